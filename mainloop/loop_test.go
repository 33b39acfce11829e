package mainloop_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dshills/orchestrate/mainloop"
)

func startLoop(t *testing.T) (*mainloop.Loop, chan struct{}) {
	t.Helper()
	l := mainloop.New()
	stopped := make(chan struct{})
	go func() {
		l.Run()
		close(stopped)
	}()
	return l, stopped
}

func TestCallRunsOnLoop(t *testing.T) {
	l, _ := startLoop(t)
	defer l.Close()

	got := l.Call(context.Background(), func() any { return 7 })
	if got != 7 {
		t.Errorf("expected 7, got %v", got)
	}
}

func TestDoMarksContext(t *testing.T) {
	l, _ := startLoop(t)
	defer l.Close()

	var onLoop bool
	l.Do(context.Background(), func(ctx context.Context) {
		onLoop = l.IsCurrent(ctx)
	})
	if !onLoop {
		t.Error("work run via Do should observe an on-loop context")
	}
}

func TestNestedCallRunsInline(t *testing.T) {
	l, _ := startLoop(t)
	defer l.Close()

	// A nested Call from on-loop code must not re-post to the loop,
	// which would deadlock the single pump goroutine.
	var nested any
	l.Do(context.Background(), func(ctx context.Context) {
		nested = l.Call(ctx, func() any { return "inner" })
	})
	if nested != "inner" {
		t.Errorf("expected nested call to complete inline, got %v", nested)
	}
}

func TestIsCurrentOtherLoop(t *testing.T) {
	l1, _ := startLoop(t)
	defer l1.Close()
	l2, _ := startLoop(t)
	defer l2.Close()

	l1.Do(context.Background(), func(ctx context.Context) {
		if l2.IsCurrent(ctx) {
			t.Error("a context marked by one loop must not satisfy another")
		}
	})
}

func TestCloseDegradedInline(t *testing.T) {
	l, stopped := startLoop(t)
	l.Close()
	<-stopped

	// Work after Close still completes, on the caller.
	got := l.Call(context.Background(), func() any { return "degraded" })
	if got != "degraded" {
		t.Errorf("expected degraded inline execution, got %v", got)
	}
}

func TestCloseIdempotent(t *testing.T) {
	l, _ := startLoop(t)
	l.Close()
	l.Close()
}

func TestPost(t *testing.T) {
	l, _ := startLoop(t)
	defer l.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	ran := false
	l.Post(context.Background(), func(context.Context) {
		ran = true
		wg.Done()
	})
	wg.Wait()

	if !ran {
		t.Error("posted work never ran")
	}
}

func TestConcurrentCalls(t *testing.T) {
	l, _ := startLoop(t)
	defer l.Close()

	const callers = 32
	results := make([]any, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = l.Call(context.Background(), func() any { return n })
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r != i {
			t.Errorf("caller %d got %v", i, r)
		}
	}
}
