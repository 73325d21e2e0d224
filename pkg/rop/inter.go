package rop

type ResultProvider[T any] interface {
	// Result returns the successful result value
	Result() T
}

// WithError defines an interface for types that can return a result or an error
type WithError[T any] interface {
	ResultProvider[T]
	// Err returns the error if operation failed
	Err() error
	// IsSuccess returns true if the operation was successful
	IsSuccess() bool
}

// Errorneous is a phase outcome that can be put on the wire.
type Errorneous[T any] interface {
	WithError[T]
	// Message returns the failure text, empty on success
	Message() string
	// CanonicalValue returns the {is_error, value|error} shape
	CanonicalValue() (any, error)
}

var _ Errorneous[int] = Result[int]{}
