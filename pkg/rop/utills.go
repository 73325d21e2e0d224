package rop

import (
	"reflect"
)

func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func GetErrors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

// Fill returns n copies of the same result.
func Fill[T any](n int, r Result[T]) []Result[T] {
	out := make([]Result[T], n)
	for i := range out {
		out[i] = r
	}
	return out
}

// Errors returns the errors of all failed results, in order.
func Errors[T any](results []Result[T]) []error {
	errs := make([]error, 0)
	for _, r := range results {
		if r.IsFailure() {
			errs = append(errs, r.Err())
		}
	}
	return errs
}
