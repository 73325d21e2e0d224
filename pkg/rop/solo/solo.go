package solo

import (
	"context"
	"runtime/debug"

	"github.com/ib-77/shellcall/pkg/rop"
	"github.com/ib-77/shellcall/pkg/rop/fault"
)

func Succeed[T any](input T) rop.Result[T] {
	return rop.Success(input)
}

// Fail classifies err before storing it, so every failed result carries a
// fault.Record.
func Fail[T any](err error) rop.Result[T] {
	return rop.Fail[T](fault.Classify(err))
}

// Guard runs execute with failure capture: a returned error or a panic both
// become a failed result holding a fault.Record.
func Guard[T any](ctx context.Context,
	execute func(ctx context.Context) (T, error)) (res rop.Result[T]) {

	defer func() {
		if v := recover(); v != nil {
			res = rop.Fail[T](fault.FromPanic(v, debug.Stack()))
		}
	}()

	out, err := execute(ctx)
	if err != nil {
		return Fail[T](err)
	}
	return rop.Success(out)
}

func Switch[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) rop.Result[Out]) rop.Result[Out] {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	}
	return rop.FailFrom[In, Out](input)
}

func Map[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out) rop.Result[Out] {

	if input.IsSuccess() {
		return rop.Success(onSuccess(ctx, input.Result()))
	}
	return rop.FailFrom[In, Out](input)
}

// Try calls onTryExecute with the successful value under Guard. A failed
// input is passed through without calling it.
func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if input.IsSuccess() {
		return Guard(ctx, func(ctx context.Context) (Out, error) {
			return onTryExecute(ctx, input.Result())
		})
	}
	return rop.FailFrom[In, Out](input)
}

func DoubleTee[T any](ctx context.Context, input rop.Result[T],
	onSuccess func(ctx context.Context, r T),
	onError func(ctx context.Context, err error)) rop.Result[T] {

	if input.IsSuccess() {
		if onSuccess != nil {
			onSuccess(ctx, input.Result())
		}
	} else if onError != nil {
		onError(ctx, input.Err())
	}

	return input
}

// Override replaces every result with the failure of by when by failed;
// otherwise results are returned unchanged.
func Override[T, B any](results []rop.Result[T], by rop.Result[B]) []rop.Result[T] {
	if by.IsSuccess() {
		return results
	}
	return rop.Fill(len(results), rop.FailFrom[B, T](by))
}

func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out) Out {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	}
	return onError(ctx, input.Err())
}
