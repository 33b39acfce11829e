// Package mainloop provides a single-goroutine execution context for
// work that must run on a designated goroutine, such as service
// construction that touches a UI toolkit. It implements the
// orchestrator's Executor contract.
package mainloop

import (
	"context"
	"sync"
)

type loopKey struct{}

type task struct {
	ctx    context.Context
	fn     func(context.Context) any
	result chan any
}

// Loop pumps posted functions on the goroutine that calls Run. Calls
// arriving from a context already executing on the loop run inline, so
// loop-resident code may call back into APIs that construct through
// the loop without deadlocking.
type Loop struct {
	tasks     chan task
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a loop. The caller must start Run on the goroutine that
// should own the loop's work.
func New() *Loop {
	return &Loop{
		// Unbuffered on purpose: a successful send means the loop has
		// taken the task and will always deliver a result for it.
		tasks: make(chan task),
		done:  make(chan struct{}),
	}
}

// Run processes posted work until Close. It must be called exactly once.
func (l *Loop) Run() {
	for {
		select {
		case t := <-l.tasks:
			t.result <- l.exec(t)
		case <-l.done:
			return
		}
	}
}

// exec runs one task with the context marked as on-loop, so nested
// Call and Do invocations run inline instead of re-posting.
func (l *Loop) exec(t task) any {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return t.fn(context.WithValue(ctx, loopKey{}, l))
}

// Close stops the loop. Work posted after Close runs inline on the
// caller as a degraded mode rather than hanging.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// IsCurrent reports whether ctx originates from work this loop is
// executing.
func (l *Loop) IsCurrent(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(loopKey{}).(*Loop)
	return owner == l
}

// Call runs fn on the loop and returns its result, satisfying the
// orchestrator's Executor interface. If ctx is already executing on
// this loop, fn runs inline.
func (l *Loop) Call(ctx context.Context, fn func() any) any {
	return l.call(ctx, func(context.Context) any { return fn() })
}

// Do runs fn on the loop and waits for it to finish. The context passed
// to fn is marked as on-loop; hand it to anything that may construct
// through this loop.
func (l *Loop) Do(ctx context.Context, fn func(context.Context)) {
	l.call(ctx, func(c context.Context) any {
		fn(c)
		return nil
	})
}

// Post runs fn on the loop without waiting for it.
func (l *Loop) Post(ctx context.Context, fn func(context.Context)) {
	go l.call(ctx, func(c context.Context) any {
		fn(c)
		return nil
	})
}

func (l *Loop) call(ctx context.Context, fn func(context.Context) any) any {
	if l.IsCurrent(ctx) {
		return fn(ctx)
	}

	t := task{ctx: ctx, fn: fn, result: make(chan any, 1)}
	select {
	case l.tasks <- t:
		// The loop accepted the task and always replies.
		return <-t.result
	case <-l.done:
		return l.exec(t)
	}
}
