package rop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_States(t *testing.T) {
	t.Parallel()

	ok := Success(5)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	assert.False(t, ok.IsEmpty())
	assert.Equal(t, 5, ok.Result())
	assert.Empty(t, ok.Message())

	failed := Fail[int](errors.New("boom"))
	assert.False(t, failed.IsSuccess())
	assert.True(t, failed.IsFailure())
	assert.Equal(t, "boom", failed.Message())

	var empty Result[int]
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, DefaultMessage, empty.Message())
}

func TestResult_EmptyFailureGetsDefaultMessage(t *testing.T) {
	t.Parallel()

	for _, r := range []Result[int]{{}, Fail[int](nil), Fail[int](errors.New(""))} {
		v, err := r.CanonicalValue()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"is_error": true, "error": DefaultMessage}, v)
	}
}

func TestFailFrom_KeepsError(t *testing.T) {
	t.Parallel()

	err := errors.New("before failed")
	out := FailFrom[string, int](Fail[string](err))

	assert.True(t, out.IsFailure())
	assert.Same(t, err, out.Err())
}

func TestResult_CanonicalValue(t *testing.T) {
	t.Parallel()

	v, err := Success("x").CanonicalValue()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"is_error": false, "value": "x"}, v)

	v, err = Fail[string](errors.New("bad")).CanonicalValue()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"is_error": true, "error": "bad"}, v)
}

func TestFillAndErrors(t *testing.T) {
	t.Parallel()

	e1 := errors.New("one")
	results := append(Fill(2, Fail[int](e1)), Success(3))
	require.Len(t, results, 3)

	errs := Errors(results)
	assert.Equal(t, []error{e1, e1}, errs)
	assert.Empty(t, Errors([]Result[int]{Success(1)}))
	assert.Empty(t, Fill(0, Success(1)))
}

func TestGetErrors(t *testing.T) {
	t.Parallel()

	a, b := errors.New("a"), errors.New("b")
	assert.Equal(t, []error{a, b}, GetErrors(errors.Join(a, b)))
	assert.Equal(t, []error{a}, GetErrors(a))
	assert.Empty(t, GetErrors(nil))
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var p *int
	var m map[string]int
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.True(t, IsNil(m))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(""))
}
