package lifecycle

import (
	"errors"
	"fmt"

	"github.com/ib-77/shellcall/pkg/rop/canon"
)

var (
	ErrArgCount          = errors.New("expected exactly one argument")
	ErrNotJSON           = errors.New("argument is not valid JSON")
	ErrNotObject         = errors.New("argument is not a JSON object")
	ErrInputsNotSequence = errors.New("inputs must be an array")
)

// InvocationError reports a malformed invocation. It is the only error the
// harness surfaces to its caller.
type InvocationError struct {
	Err    error
	Detail string
}

func (e *InvocationError) Error() string {
	if e.Detail == "" {
		return "invalid invocation: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid invocation: %v: %s", e.Err, e.Detail)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Request is the single payload of one harness run.
type Request struct {
	Before canon.Value
	Inputs []canon.Value
	After  canon.Value
}

// ParseRequest decodes the process arguments (without the program name).
func ParseRequest(args []string) (Request, error) {
	if len(args) != 1 {
		return Request{}, &InvocationError{Err: ErrArgCount, Detail: fmt.Sprintf("got %d", len(args))}
	}
	return DecodeRequest([]byte(args[0]))
}

func DecodeRequest(raw []byte) (Request, error) {
	v, err := canon.Decode(raw)
	if err != nil {
		return Request{}, &InvocationError{Err: ErrNotJSON, Detail: err.Error()}
	}
	if v.Kind() != canon.KindObject {
		return Request{}, &InvocationError{Err: ErrNotObject, Detail: "got " + v.Kind().String()}
	}

	inputs, ok := v.Field("inputs")
	if !ok {
		return Request{}, &InvocationError{Err: ErrInputsNotSequence, Detail: "inputs is missing"}
	}
	items, ok := inputs.AsArray()
	if !ok {
		return Request{}, &InvocationError{Err: ErrInputsNotSequence, Detail: "got " + inputs.Kind().String()}
	}

	before, _ := v.Field("before")
	after, _ := v.Field("after")

	return Request{
		Before: before,
		Inputs: items,
		After:  after,
	}, nil
}

// CanonicalValue is the wire form of the request.
func (r Request) CanonicalValue() (any, error) {
	inputs := r.Inputs
	if inputs == nil {
		inputs = []canon.Value{}
	}
	return map[string]any{
		"before": r.Before,
		"inputs": inputs,
		"after":  r.After,
	}, nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	return canon.Encode(r, canon.WithIndent(0))
}
