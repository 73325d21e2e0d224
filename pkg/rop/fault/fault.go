package fault

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/ib-77/shellcall/pkg/rop"
)

// DefaultMessage replaces an empty or missing failure text.
const DefaultMessage = rop.DefaultMessage

// Record is the canonical form of anything a phase failed with.
type Record struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func (r Record) Error() string {
	return r.Message
}

func (r Record) HasStack() bool {
	return r.Stack != ""
}

// Stacker is implemented by errors that remember where they were created.
type Stacker interface {
	Stack() string
}

type stackError struct {
	err   error
	stack string
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }
func (e *stackError) Stack() string { return e.stack }

// WithStack annotates err with the stack of the calling goroutine.
// Errors that already carry a stack are returned unchanged.
func WithStack(err error) error {
	if rop.IsNil(err) {
		return nil
	}
	var s Stacker
	if errors.As(err, &s) {
		return err
	}
	return &stackError{err: err, stack: string(debug.Stack())}
}

// New is errors.New with a stack attached.
func New(msg string) error {
	return WithStack(errors.New(msg))
}

// Classify turns an arbitrary failure value into a Record.
func Classify(v any) Record {
	switch t := v.(type) {
	case nil:
		return Record{Message: DefaultMessage}
	case Record:
		return orDefault(t)
	case *Record:
		if t == nil {
			return Record{Message: DefaultMessage}
		}
		return orDefault(*t)
	case error:
		return classifyError(t)
	case fmt.Stringer:
		if rop.IsNil(t) {
			return Record{Message: DefaultMessage}
		}
		return orDefault(Record{Message: t.String()})
	case string:
		return orDefault(Record{Message: t})
	}

	if rop.IsNil(v) {
		return Record{Message: DefaultMessage}
	}
	return orDefault(Record{Message: fmt.Sprint(v)})
}

// FromPanic classifies a recovered panic value. stack is used only when the
// value does not already carry one.
func FromPanic(v any, stack []byte) Record {
	r := Classify(v)
	if !r.HasStack() {
		r.Stack = string(stack)
	}
	return r
}

func classifyError(err error) Record {
	if rop.IsNil(err) {
		return Record{Message: DefaultMessage}
	}

	r := Record{Message: err.Error()}

	var rec Record
	if errors.As(err, &rec) {
		r.Stack = rec.Stack
	}
	var s Stacker
	if r.Stack == "" && errors.As(err, &s) {
		r.Stack = s.Stack()
	}
	return orDefault(r)
}

func orDefault(r Record) Record {
	if r.Message == "" {
		r.Message = DefaultMessage
	}
	return r
}
