package orchestrator

import (
	"context"

	"github.com/dshills/orchestrate/service"
)

// Instance lifecycle.
//
// Construction may need to run on a privileged execution context (the
// configured Executor). If construction ran while holding the
// orchestrator mutex, and code on that privileged context later tried
// to acquire the same mutex (to register more services, say), the two
// would deadlock on each other. So the protocol is:
//
//  1. read the resident store under the mutex, then release it;
//  2. construct outside any lock, handed off to the executor;
//  3. re-acquire the mutex only to double-check-and-insert — if
//     another caller raced ahead, discard the redundant instance and
//     use the existing one.
//
// The double-checked insert guarantees at most one resident instance
// per identity is ever observable, even under concurrent first-use.

// instanceFor obtains a live instance for an entry. Transient services
// are constructed fresh for this one dispatch; resident services are
// reused from the store. A false return means no instance could be
// obtained and the entry should be skipped.
func (o *Orchestrator) instanceFor(ctx context.Context, e *entry) (any, bool) {
	if e.retention == service.Transient {
		inst := o.construct(ctx, e)
		return inst, inst != nil
	}

	o.mu.Lock()
	if inst, ok := o.instances[e.identity]; ok {
		o.mu.Unlock()
		return inst, true
	}
	o.mu.Unlock()

	inst := o.construct(ctx, e)
	if inst == nil {
		return nil, false
	}

	o.mu.Lock()
	if existing, ok := o.instances[e.identity]; ok {
		o.mu.Unlock()
		// Lost the race; the winner's instance is the observable one.
		o.logger.Debug("discarding redundant resident instance",
			"service", e.identity)
		return existing, true
	}
	o.instances[e.identity] = inst
	o.mu.Unlock()

	return inst, true
}

// construct builds an instance on the executor, through the entry's
// factory when the descriptor names one, otherwise through the
// definition's New. Returns nil if construction fails or panics.
func (o *Orchestrator) construct(ctx context.Context, e *entry) any {
	build := func() (inst any) {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("service construction panicked",
					"service", e.identity, "panic", r)
				inst = nil
			}
		}()

		if e.desc.Factory != "" {
			fn, ok := o.catalog.Factory(e.desc.Factory)
			if !ok {
				o.logger.Warn("descriptor names unknown factory",
					"service", e.identity, "factory", e.desc.Factory)
				return nil
			}
			return fn(e.desc.Args)
		}

		if e.def.New == nil {
			o.logger.Warn("definition has no constructor",
				"service", e.identity)
			return nil
		}
		return e.def.New()
	}

	return o.exec.Call(ctx, build)
}

// ResidentCount returns the number of cached resident instances.
func (o *Orchestrator) ResidentCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.instances)
}

// Resident returns the cached resident instance for an identity.
func (o *Orchestrator) Resident(identity string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	inst, ok := o.instances[identity]
	return inst, ok
}
