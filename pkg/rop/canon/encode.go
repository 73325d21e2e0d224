package canon

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultIndent is the number of spaces per nesting level used by Encode.
const DefaultIndent = 2

const maxDepth = 512

var (
	ErrUnsupported = errors.New("canon: unsupported value")
	ErrTooDeep     = errors.New("canon: value nested too deeply")
)

// Marshaler is implemented by types that pick their own serialized shape.
// The returned data is normalized like any other input, so it may be a
// Value, plain Go data, or another Marshaler.
type Marshaler interface {
	CanonicalValue() (any, error)
}

type Option func(*encoder)

// WithIndent sets spaces per level. Zero produces compact output.
func WithIndent(n int) Option {
	return func(e *encoder) {
		if n < 0 {
			n = 0
		}
		e.indent = n
	}
}

// Encode serializes v with object keys sorted, so values that differ only in
// key insertion order produce identical bytes.
func Encode(v any, opts ...Option) ([]byte, error) {
	val, err := From(v)
	if err != nil {
		return nil, err
	}

	e := &encoder{indent: DefaultIndent}
	for _, opt := range opts {
		opt(e)
	}
	e.write(val, 0)
	return e.buf.Bytes(), nil
}

// From normalizes Go data into a Value. Marshaler and json.Marshaler hooks are
// expanded first; structs go through their JSON form so field tags apply.
func From(v any) (Value, error) {
	return from(v, 0)
}

func from(v any, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}

	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return Null(), nil
		}
		return *t, nil
	case Marshaler:
		if isNilPointer(v) {
			return Null(), nil
		}
		expanded, err := t.CanonicalValue()
		if err != nil {
			return Value{}, fmt.Errorf("canon: %T: %w", v, err)
		}
		return from(expanded, depth+1)
	case json.Marshaler:
		if isNilPointer(v) {
			return Null(), nil
		}
		raw, err := t.MarshalJSON()
		if err != nil {
			return Value{}, fmt.Errorf("canon: %T: %w", v, err)
		}
		return Decode(raw)
	case encoding.TextMarshaler:
		if isNilPointer(v) {
			return Null(), nil
		}
		text, err := t.MarshalText()
		if err != nil {
			return Value{}, fmt.Errorf("canon: %T: %w", v, err)
		}
		return String(string(text)), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String())
	case float64:
		return floatValue(t, 64), nil
	case float32:
		return floatValue(float64(t), 32), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case int32:
		return Int(int64(t)), nil
	case uint64:
		return Value{kind: KindNumber, s: strconv.FormatUint(t, 10)}, nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			iv, err := from(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			iv, err := from(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			fields[k] = iv
		}
		return Object(fields), nil
	}

	return fromReflect(reflect.ValueOf(v), depth)
}

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return from(rv.Elem().Interface(), depth+1)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Value{kind: KindNumber, s: strconv.FormatUint(rv.Uint(), 10)}, nil
	case reflect.Float32:
		return floatValue(rv.Float(), 32), nil
	case reflect.Float64:
		return floatValue(rv.Float(), 64), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return viaJSON(rv.Interface())
		}
		fallthrough
	case reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			iv, err := from(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return Array(items...), nil
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		fields := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, err := mapKey(iter.Key())
			if err != nil {
				return Value{}, err
			}
			iv, err := from(iter.Value().Interface(), depth+1)
			if err != nil {
				return Value{}, err
			}
			fields[key] = iv
		}
		return Object(fields), nil
	case reflect.Struct:
		fields := make(map[string]Value, rv.NumField())
		if err := structFields(rv, depth, fields); err != nil {
			return Value{}, err
		}
		return Object(fields), nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnsupported, rv.Kind())
}

// mapKey names a map entry the way encoding/json does: string kinds as is,
// then TextMarshaler keys, then integers in decimal.
func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if isNilPointer(tm) {
			return "", nil
		}
		text, err := tm.MarshalText()
		if err != nil {
			return "", fmt.Errorf("canon: map key %T: %w", tm, err)
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key %s", ErrUnsupported, k.Type())
}

// structFields walks exported fields with json tag rules (rename, "-",
// omitempty, omitzero) and calls from on each, so hooks nested in structs
// are expanded. Fields of exported embedded structs are promoted; a field
// declared on the outer struct wins over a promoted one.
func structFields(rv reflect.Value, depth int, fields map[string]Value) error {
	if depth > maxDepth {
		return ErrTooDeep
	}

	rt := rv.Type()
	var embedded []reflect.Value

	for i := range rt.NumField() {
		sf := rt.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" || !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if sf.Anonymous && name == "" && !isHooked(fv) {
			inner := fv
			if inner.Kind() == reflect.Pointer {
				if inner.IsNil() {
					continue
				}
				inner = inner.Elem()
			}
			if inner.Kind() == reflect.Struct {
				embedded = append(embedded, inner)
				continue
			}
		}

		if name == "" {
			name = sf.Name
		}
		if hasOption(opts, "omitempty") && isEmpty(fv) {
			continue
		}
		if hasOption(opts, "omitzero") && fv.IsZero() {
			continue
		}

		v, err := from(fv.Interface(), depth+1)
		if err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
		fields[name] = v
	}

	for _, inner := range embedded {
		promoted := make(map[string]Value)
		if err := structFields(inner, depth+1, promoted); err != nil {
			return err
		}
		for k, v := range promoted {
			if _, taken := fields[k]; !taken {
				fields[k] = v
			}
		}
	}
	return nil
}

func isHooked(fv reflect.Value) bool {
	switch fv.Interface().(type) {
	case Marshaler, json.Marshaler, encoding.TextMarshaler:
		return true
	}
	return false
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

// isEmpty is encoding/json's omitempty rule.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func viaJSON(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return Decode(raw)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// floatValue renders non-finite numbers as null, the way JSON encoders in
// browsers and Node do.
func floatValue(f float64, bits int) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, s: formatFloat(f, bits)}
}

func formatFloat(f float64, bits int) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, bits)
	if format == 'e' {
		// e-09 -> e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return string(b)
}

func normalizeNumber(text string) string {
	if isIntegerText(text) {
		return text
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return text
	}
	return formatFloat(f, 64)
}

func isIntegerText(text string) bool {
	digits := text
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" || digits == "0" && text[0] == '-' {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

type encoder struct {
	indent int
	buf    bytes.Buffer
}

func (e *encoder) write(v Value, depth int) {
	switch v.kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		e.buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		e.buf.WriteString(v.s)
	case KindString:
		e.writeString(v.s)
	case KindArray:
		if len(v.arr) == 0 {
			e.buf.WriteString("[]")
			return
		}
		e.buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.write(item, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte(']')
	case KindObject:
		if len(v.obj) == 0 {
			e.buf.WriteString("{}")
			return
		}
		e.buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.writeString(k)
			e.buf.WriteByte(':')
			if e.indent > 0 {
				e.buf.WriteByte(' ')
			}
			e.write(v.obj[k], depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte('}')
	}
}

func (e *encoder) newline(depth int) {
	if e.indent == 0 {
		return
	}
	e.buf.WriteByte('\n')
	for range depth * e.indent {
		e.buf.WriteByte(' ')
	}
}

const hex = "0123456789abcdef"

// writeString quotes s without HTML escaping; invalid UTF-8 becomes U+FFFD.
func (e *encoder) writeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				e.buf.WriteByte('\\')
				e.buf.WriteByte(c)
			case c == '\n':
				e.buf.WriteString(`\n`)
			case c == '\r':
				e.buf.WriteString(`\r`)
			case c == '\t':
				e.buf.WriteString(`\t`)
			case c == '\b':
				e.buf.WriteString(`\b`)
			case c == '\f':
				e.buf.WriteString(`\f`)
			case c < 0x20:
				e.buf.WriteString(`\u00`)
				e.buf.WriteByte(hex[c>>4])
				e.buf.WriteByte(hex[c&0xF])
			default:
				e.buf.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			e.buf.WriteString("\ufffd")
		} else {
			e.buf.WriteString(s[i : i+size])
		}
		i += size
	}
	e.buf.WriteByte('"')
}
