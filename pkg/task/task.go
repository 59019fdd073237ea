// Package task models an asynchronous operation that may only run once at
// a time, so a control bound to it can be disabled while it is in flight.
package task

import (
	"context"
	"errors"
	"sync"
)

var ErrInFlight = errors.New("task: already in flight")

type Outcome int

const (
	Succeeded Outcome = iota + 1
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Result[T any] struct {
	Value   T
	Err     error
	Outcome Outcome
}

type Task[T any] struct {
	mu       sync.Mutex
	inFlight bool
	cancel   context.CancelFunc
	watchers []func(inFlight bool)
}

// Watch registers fn to be told when the task starts and finishes.
func (t *Task[T]) Watch(fn func(inFlight bool)) {
	t.mu.Lock()
	t.watchers = append(t.watchers, fn)
	t.mu.Unlock()
}

func (t *Task[T]) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Cancel aborts the running operation, if any.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run executes fn and blocks until it returns. A second Run while one is
// outstanding fails with ErrInFlight without calling fn.
func (t *Task[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) (Result[T], error) {
	ctx, err := t.begin(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	defer t.end()

	v, err := fn(ctx)
	return classify(ctx, v, err), nil
}

// Start runs fn in its own goroutine and delivers the result on the
// returned channel.
func (t *Task[T]) Start(ctx context.Context, fn func(ctx context.Context) (T, error)) (<-chan Result[T], error) {
	ctx, err := t.begin(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		v, err := fn(ctx)
		res := classify(ctx, v, err)
		t.end()
		out <- res
	}()
	return out, nil
}

func (t *Task[T]) begin(parent context.Context) (context.Context, error) {
	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return nil, ErrInFlight
	}
	ctx, cancel := context.WithCancel(parent)
	t.inFlight = true
	t.cancel = cancel
	watchers := append([]func(bool){}, t.watchers...)
	t.mu.Unlock()

	for _, w := range watchers {
		w(true)
	}
	return ctx, nil
}

func (t *Task[T]) end() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.inFlight = false
	t.cancel = nil
	watchers := append([]func(bool){}, t.watchers...)
	t.mu.Unlock()

	for _, w := range watchers {
		w(false)
	}
}

func classify[T any](ctx context.Context, v T, err error) Result[T] {
	switch {
	case err == nil:
		return Result[T]{Value: v, Outcome: Succeeded}
	case errors.Is(err, context.Canceled) || ctx.Err() == context.Canceled:
		return Result[T]{Err: err, Outcome: Cancelled}
	default:
		return Result[T]{Err: err, Outcome: Failed}
	}
}
