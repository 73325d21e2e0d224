package rop

// DefaultMessage is reported by a failed result that carries no text.
const DefaultMessage = "unknown error"

// Result is the outcome of a single phase call: either a success payload or
// the error that stopped it.
type Result[T any] struct {
	result    T
	err       error
	isSuccess bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		err:       nil,
		isSuccess: true,
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isSuccess: false,
	}
}

// FailFrom carries the error of a failed result over to another payload type.
func FailFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: from.isSuccess,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return !r.isSuccess && r.err != nil
}

func (r Result[T]) IsEmpty() bool {
	return r.err == nil && !r.isSuccess
}

// Message is the text of the failure, or "" for a successful result. A
// failure without text reports DefaultMessage.
func (r Result[T]) Message() string {
	if r.isSuccess {
		return ""
	}
	if IsNil(r.err) {
		return DefaultMessage
	}
	if msg := r.err.Error(); msg != "" {
		return msg
	}
	return DefaultMessage
}

// CanonicalValue renders the result in its wire shape:
// {"is_error": false, "value": ...} or {"is_error": true, "error": "..."}.
func (r Result[T]) CanonicalValue() (any, error) {
	if r.isSuccess {
		return map[string]any{
			"is_error": false,
			"value":    r.result,
		}, nil
	}
	return map[string]any{
		"is_error": true,
		"error":    r.Message(),
	}, nil
}
