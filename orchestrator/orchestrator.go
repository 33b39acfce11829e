// Package orchestrator delivers named lifecycle events to registered
// services in priority order, with short-circuiting and transient or
// process-resident service instances.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/orchestrate/discovery"
	"github.com/dshills/orchestrate/service"
)

// Return is the aggregate result of a fire call. The zero Return is the
// "no value" sentinel produced when the chain runs to completion
// without any handler stopping it.
type Return struct {
	// Value is the aggregate value carried by the stopping handler.
	Value any
	// Stopped reports whether a handler terminated the chain.
	Stopped bool
}

// Orchestrator owns the event cache and the resident instance store and
// implements registration, bootstrap, and dispatch. It runs no
// background goroutines: Fire executes synchronously on the calling
// goroutine and returns the aggregate value to that caller.
//
// All cache and instance store mutations are linearized through a
// single mutex. Service construction and Bind procedures always run
// outside that mutex (see instances.go for why).
type Orchestrator struct {
	mu         sync.Mutex
	cache      *eventCache
	registered map[string]bool // identities already consumed
	instances  map[string]any  // resident store: identity -> live instance
	seq        uint64          // merge sequence, for the stable tie-break

	catalog *service.Catalog
	sources []discovery.Source
	exec    Executor
	logger  *slog.Logger
	hooks   *hookSet
	metrics *Metrics

	bootOnce sync.Once
	bootErr  error
}

// New creates an orchestrator over a catalog.
func New(catalog *service.Catalog, opts ...Option) *Orchestrator {
	if catalog == nil {
		catalog = service.NewCatalog()
	}

	o := &Orchestrator{
		cache:      newEventCache(),
		registered: make(map[string]bool),
		instances:  make(map[string]any),
		catalog:    catalog,
		exec:       inlineExecutor{},
		logger:     slog.Default(),
		hooks:      newHookSet(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Catalog returns the catalog descriptors resolve against.
func (o *Orchestrator) Catalog() *service.Catalog {
	return o.catalog
}

// Metrics returns the metrics collector, or nil if metrics are disabled.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// RegisterPreHook adds a pre-fire hook, replacing any with the same name.
func (o *Orchestrator) RegisterPreHook(h PreFireHook) {
	o.hooks.registerPre(h)
}

// RegisterPostHook adds a post-fire hook, replacing any with the same name.
func (o *Orchestrator) RegisterPostHook(h PostFireHook) {
	o.hooks.registerPost(h)
}

// UnregisterHook removes a hook by name from both hook lists.
func (o *Orchestrator) UnregisterHook(name string) bool {
	return o.hooks.unregister(name)
}

// Register merges descriptors synchronously. The merge is visible to
// the very next Fire or Register call on any goroutine. Descriptors
// that cannot be resolved, or whose identity was already registered,
// are skipped with a diagnostic log record; nothing is reported as an
// error to the caller.
func (o *Orchestrator) Register(_ context.Context, descs ...service.Descriptor) {
	for _, d := range descs {
		o.merge(d)
	}
}

// RegisterAsync merges descriptors on a separate goroutine and returns
// immediately. Use Register when the caller needs the merge visible
// before continuing.
func (o *Orchestrator) RegisterAsync(ctx context.Context, descs ...service.Descriptor) {
	go o.Register(ctx, descs...)
}

// merge resolves one descriptor and fans its bindings into the cache.
func (o *Orchestrator) merge(desc service.Descriptor) {
	if desc.Type == "" {
		o.logger.Warn("descriptor with empty type ignored")
		return
	}

	def, ok := o.catalog.Lookup(desc.Type)
	if !ok {
		// Unresolvable: skipped without claiming the identity, so a
		// later descriptor can still succeed once a definition exists.
		o.logger.Warn("descriptor type not in catalog; skipping",
			"service", desc.Type)
		return
	}

	// Claim the identity under the lock before binding so concurrent
	// merges of the same identity collapse to one.
	o.mu.Lock()
	if o.registered[desc.Type] {
		o.mu.Unlock()
		o.logger.Debug("duplicate registration ignored", "service", desc.Type)
		return
	}
	o.registered[desc.Type] = true
	o.mu.Unlock()

	bindings := o.collectBindings(def)
	if len(bindings) == 0 {
		// Accepted but inert.
		o.logger.Debug("service registered no handlers", "service", desc.Type)
		return
	}

	priority := desc.EffectivePriority(def)
	retention := desc.EffectiveRetention(def)

	o.mu.Lock()
	entries := make([]*entry, 0, len(bindings))
	for _, bn := range bindings {
		o.seq++
		entries = append(entries, &entry{
			identity:  def.Identity,
			event:     bn.Event,
			priority:  priority,
			retention: retention,
			seq:       o.seq,
			handler:   bn.Handler,
			def:       def,
			desc:      desc,
		})
	}
	o.cache.insert(entries)
	o.mu.Unlock()

	o.logger.Debug("service registered",
		"service", desc.Type,
		"events", len(bindings),
		"priority", priority,
		"retention", retention.String())
}

// collectBindings runs a definition's Bind procedure into a fresh
// binder, outside the orchestrator lock. Bind is side-effect-free and
// idempotent by contract; a panicking Bind registers nothing.
func (o *Orchestrator) collectBindings(def service.Definition) (bindings []service.Binding) {
	if def.Bind == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("bind procedure panicked",
				"service", def.Identity, "panic", r)
			bindings = nil
		}
	}()

	binder := service.NewBinder()
	def.Bind(binder)
	return binder.Entries()
}

// Bootstrap pulls descriptors from the configured discovery sources and
// merges them, exactly once for the orchestrator's lifetime. A failing
// source is logged and skipped; its error is joined into the returned
// error but never blocks the other sources. Fire performs the same
// bootstrap lazily if it has not run yet.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	o.bootOnce.Do(func() {
		var errs []error
		for _, src := range o.sources {
			descs, err := src.Load(ctx)
			if err != nil {
				o.logger.Warn("discovery source failed", "error", err)
				errs = append(errs, err)
			}
			if len(descs) > 0 {
				o.Register(ctx, descs...)
			}
		}
		o.bootErr = errors.Join(errs...)
	})
	return o.bootErr
}

// Fire dispatches an event through the responsibility chain: handlers
// run strictly sequentially in priority order on the calling goroutine
// until one stops the chain or the chain runs out. Handler failures are
// contained; nothing propagates to the caller beyond the aggregate
// Return and log records.
func (o *Orchestrator) Fire(ctx context.Context, event string, params map[string]any) Return {
	if ctx == nil {
		ctx = context.Background()
	}

	// Never dispatch against a not-yet-populated cache.
	_ = o.Bootstrap(ctx)

	start := time.Now()

	o.mu.Lock()
	entries := o.cache.snapshot(event)
	o.mu.Unlock()

	// One shared bag for the whole chain of this call.
	bag := service.NewBag()
	callCtx := &service.Context{
		Ctx:    ctx,
		Event:  event,
		Params: params,
		Data:   bag,
	}

	var ret Return
	var stats fireStats

	// A vetoed call never dispatches: no handlers, no post hooks, and
	// no metrics record.
	if !o.hooks.runPre(event, callCtx) {
		o.logger.Debug("fire vetoed by pre-fire hook", "event", event)
		return ret
	}

	for _, e := range entries {
		inst, ok := o.instanceFor(ctx, e)
		if !ok {
			o.logger.Warn("no instance obtainable; entry skipped",
				"service", e.identity, "event", event)
			continue
		}

		ectx := &service.Context{
			Ctx:    ctx,
			Event:  event,
			Args:   e.desc.Args,
			Params: params,
			Data:   bag,
		}

		res := o.invoke(e, inst, ectx)
		if res.Status == service.StatusFailed {
			stats.failures++
			o.logger.Warn("handler failed",
				"service", e.identity,
				"event", event,
				"error", res.Err,
				"message", res.Message)
		}
		if res.Flow == service.FlowStop {
			// An explicit stop wins even when the same handler failed.
			ret = Return{Value: res.Value, Stopped: true}
			stats.stopped = true
			o.logger.Info("event intercepted",
				"event", event, "service", e.identity)
			break
		}
	}

	o.hooks.runPost(event, callCtx, &ret)

	if o.metrics != nil {
		o.metrics.record(event, time.Since(start), stats)
	}

	return ret
}

// invoke runs one bound handler with panic recovery. A panic or a
// missing binding degrades to a failed, continuing result.
func (o *Orchestrator) invoke(e *entry, inst any, ctx *service.Context) (res service.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = service.Failf("handler for %q on %s panicked: %v", e.event, e.identity, r)
			if o.metrics != nil {
				o.metrics.recordPanic()
			}
		}
	}()

	if e.handler == nil {
		return service.Failf("no handler bound for %s on %q", e.identity, e.event)
	}
	return e.handler(inst, ctx)
}

// FireAs fires an event and asserts the aggregate value to T. The bool
// reports whether the chain was stopped with a value of that type.
func FireAs[T any](ctx context.Context, o *Orchestrator, event string, params map[string]any) (T, bool) {
	var zero T

	ret := o.Fire(ctx, event, params)
	if !ret.Stopped {
		return zero, false
	}

	v, ok := ret.Value.(T)
	if !ok {
		o.logger.Warn("aggregate value type mismatch",
			"event", event,
			"want", fmt.Sprintf("%T", zero),
			"got", fmt.Sprintf("%T", ret.Value))
		return zero, false
	}
	return v, true
}

// Registered reports whether an identity has been consumed by a merge.
func (o *Orchestrator) Registered(identity string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.registered[identity]
}

// Events returns all event names with at least one resolved entry.
func (o *Orchestrator) Events() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.events()
}

// EntryCount returns the number of resolved entries for an event.
func (o *Orchestrator) EntryCount(event string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache.count(event)
}
