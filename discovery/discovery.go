// Package discovery defines the contract between the orchestrator and
// the components that produce service descriptors, plus the trivial
// in-code sources. File-based sources live in subpackages.
package discovery

import (
	"context"

	"github.com/dshills/orchestrate/service"
)

// Source produces service descriptors for the orchestrator to merge.
// The orchestrator treats all sources uniformly and pulls each one
// exactly once at bootstrap.
type Source interface {
	Load(ctx context.Context) ([]service.Descriptor, error)
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context) ([]service.Descriptor, error)

// Load implements Source.
func (f Func) Load(ctx context.Context) ([]service.Descriptor, error) {
	return f(ctx)
}

type staticSource struct {
	descs []service.Descriptor
}

// Static creates a source that returns a fixed descriptor list.
func Static(descs ...service.Descriptor) Source {
	s := staticSource{descs: make([]service.Descriptor, len(descs))}
	copy(s.descs, descs)
	return s
}

// Load implements Source. It returns a copy so callers cannot mutate
// the source's backing list.
func (s staticSource) Load(_ context.Context) ([]service.Descriptor, error) {
	out := make([]service.Descriptor, len(s.descs))
	copy(out, s.descs)
	return out, nil
}
