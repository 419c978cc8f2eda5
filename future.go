package uanode

import (
	"context"
	"fmt"
)

// Future is the eventual result of an asynchronous operation. It completes
// exactly once, with either a value or an error.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Go runs fn on a new goroutine and returns its future. A panic in fn
// completes the future with an error.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var (
			v   T
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.complete(zero, fmt.Errorf("panic: %v", r))
				return
			}
			f.complete(v, err)
		}()
		v, err = fn(ctx)
	}()
	return f
}

// Completed returns a future already completed with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a future already completed with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

// Then returns a future for fn applied to the value of f. fn runs only after
// f succeeded; a failure of f is propagated unchanged.
func Then[T, U any](ctx context.Context, f *Future[T], fn func(ctx context.Context, v T) (U, error)) *Future[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := f.Wait(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(ctx, v)
	})
}

// Done is closed once the future completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future completes or ctx is done and returns the raw outcome.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Await blocks on f and normalizes its failure: a StatusError anywhere in the
// chain is returned unchanged, anything else (including ctx expiring while
// blocked) becomes StatusError{Code: BadUnexpectedError}.
func Await[T any](ctx context.Context, f *Future[T]) (T, error) {
	v, err := f.Wait(ctx)
	if err != nil {
		var zero T
		return zero, normalize(err)
	}
	return v, nil
}
