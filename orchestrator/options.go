package orchestrator

import (
	"context"
	"log/slog"

	"github.com/dshills/orchestrate/discovery"
)

// Executor runs service construction on a designated execution context.
// The orchestrator never calls it while holding its own lock, so an
// executor is free to acquire orchestrator APIs from its own goroutine.
type Executor interface {
	// Call runs fn to completion and returns its result.
	Call(ctx context.Context, fn func() any) any
}

// inlineExecutor runs construction on the calling goroutine. It is the
// default for hosts with no privileged construction context.
type inlineExecutor struct{}

func (inlineExecutor) Call(_ context.Context, fn func() any) any {
	return fn()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithExecutor sets the executor used for service construction.
// Defaults to running construction on the calling goroutine.
func WithExecutor(exec Executor) Option {
	return func(o *Orchestrator) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithSources sets the discovery sources pulled at bootstrap, in order.
func WithSources(sources ...discovery.Source) Option {
	return func(o *Orchestrator) {
		o.sources = append(o.sources, sources...)
	}
}

// WithMetrics enables dispatch metrics collection.
func WithMetrics() Option {
	return func(o *Orchestrator) {
		o.metrics = NewMetrics()
	}
}
