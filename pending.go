package colorbook

import "context"

// Result is the outcome of an asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// Pending is an asynchronous operation running in its own goroutine. Its
// result is collected by polling from the game loop, so completion handling
// always runs on the loop goroutine.
type Pending[T any] struct {
	ch     chan Result[T]
	cancel context.CancelFunc
	res    Result[T]
	done   bool
}

// LoadAsync starts fn in a goroutine. Cancelling ctx or calling Cancel
// cancels the context passed to fn.
func LoadAsync[T any](ctx context.Context, fn func(context.Context) (T, error)) *Pending[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pending[T]{ch: make(chan Result[T], 1), cancel: cancel}
	go func() {
		defer cancel()
		v, err := fn(ctx)
		p.ch <- Result[T]{Value: v, Err: err}
	}()
	return p
}

// Poll returns the result and true once the operation has finished. It
// never blocks.
func (p *Pending[T]) Poll() (Result[T], bool) {
	if p.done {
		return p.res, true
	}
	select {
	case r := <-p.ch:
		p.res, p.done = r, true
		return r, true
	default:
		return Result[T]{}, false
	}
}

// Wait blocks until the operation finishes or ctx is done.
func (p *Pending[T]) Wait(ctx context.Context) (Result[T], error) {
	if p.done {
		return p.res, nil
	}
	select {
	case r := <-p.ch:
		p.res, p.done = r, true
		return r, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

// Cancel asks the operation to stop. A result may still arrive.
func (p *Pending[T]) Cancel() { p.cancel() }
