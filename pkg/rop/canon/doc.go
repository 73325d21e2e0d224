// Package canon holds the opaque payload type passed through the harness and
// the deterministic encoder used for everything the harness emits.
//
// Value is a tagged variant over null, bool, number, string, array and
// object. Encode normalizes arbitrary Go data (expanding Marshaler,
// json.Marshaler and encoding.TextMarshaler hooks wherever they sit, struct
// fields included), sorts object keys and writes JSON indented by
// DefaultIndent spaces, so two structures that differ only in key order
// encode to the same bytes.
package canon
