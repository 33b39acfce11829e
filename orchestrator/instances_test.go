package orchestrator_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dshills/orchestrate/orchestrator"
	"github.com/dshills/orchestrate/service"
)

type probe struct {
	id int64
}

func TestTransientFreshPerDispatch(t *testing.T) {
	var built atomic.Int64

	catalog := service.NewCatalog()
	catalog.MustRegister(service.Definition{
		Identity:  "tr",
		Retention: service.Transient,
		New: func() any {
			return &probe{id: built.Add(1)}
		},
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(p *probe, _ *service.Context) service.Result {
				return service.Stop(p.id)
			})
		},
	})

	o := orchestrator.New(catalog, orchestrator.WithLogger(quietLogger()))
	ctx := context.Background()
	o.Register(ctx, service.NewDescriptor("tr"))

	first := o.Fire(ctx, "ev", nil)
	second := o.Fire(ctx, "ev", nil)

	if first.Value == second.Value {
		t.Errorf("transient dispatches must not share an instance: %v == %v",
			first.Value, second.Value)
	}
	if built.Load() != 2 {
		t.Errorf("expected 2 constructions, got %d", built.Load())
	}
	if o.ResidentCount() != 0 {
		t.Errorf("transient instances must not enter the store, got %d", o.ResidentCount())
	}
}

func TestResidentReused(t *testing.T) {
	var built atomic.Int64

	catalog := service.NewCatalog()
	catalog.MustRegister(service.Definition{
		Identity:  "res",
		Retention: service.Resident,
		New: func() any {
			return &probe{id: built.Add(1)}
		},
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(p *probe, _ *service.Context) service.Result {
				return service.Stop(p.id)
			})
		},
	})

	o := orchestrator.New(catalog, orchestrator.WithLogger(quietLogger()))
	ctx := context.Background()
	o.Register(ctx, service.NewDescriptor("res"))

	first := o.Fire(ctx, "ev", nil)
	second := o.Fire(ctx, "ev", nil)

	if first.Value != second.Value {
		t.Errorf("resident dispatches must share one instance: %v != %v",
			first.Value, second.Value)
	}
	if built.Load() != 1 {
		t.Errorf("expected 1 construction, got %d", built.Load())
	}
	if inst, ok := o.Resident("res"); !ok || inst == nil {
		t.Error("expected the instance cached in the store")
	}
}

// Concurrent first use of a resident service: extra constructions may
// race, but exactly one instance is ever observable.
func TestResidentConcurrentFirstUse(t *testing.T) {
	var built atomic.Int64

	catalog := service.NewCatalog()
	catalog.MustRegister(service.Definition{
		Identity:  "res",
		Retention: service.Resident,
		New: func() any {
			return &probe{id: built.Add(1)}
		},
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(p *probe, _ *service.Context) service.Result {
				return service.Stop(p)
			})
		},
	})

	o := orchestrator.New(catalog, orchestrator.WithLogger(quietLogger()))
	ctx := context.Background()
	o.Register(ctx, service.NewDescriptor("res"))

	const callers = 64
	seen := make([]any, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			seen[slot] = o.Fire(ctx, "ev", nil).Value
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if seen[i] != seen[0] {
			t.Fatalf("observed two resident instances: %v and %v", seen[0], seen[i])
		}
	}
	if o.ResidentCount() != 1 {
		t.Errorf("expected exactly one cached instance, got %d", o.ResidentCount())
	}
}

func TestConstructionFailureSkipsEntry(t *testing.T) {
	ran := false
	catalog := service.NewCatalog()
	catalog.MustRegister(service.Definition{
		Identity: "broken",
		Priority: 50,
		New:      func() any { return nil },
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(_ *probe, _ *service.Context) service.Result {
				t.Error("handler must not run without an instance")
				return service.Continue()
			})
		},
	})
	catalog.MustRegister(service.Definition{
		Identity: "fine",
		Priority: 1,
		New:      func() any { return &probe{} },
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(_ *probe, _ *service.Context) service.Result {
				ran = true
				return service.Continue()
			})
		},
	})

	o := orchestrator.New(catalog, orchestrator.WithLogger(quietLogger()))
	ctx := context.Background()
	o.Register(ctx, service.NewDescriptor("broken"), service.NewDescriptor("fine"))

	o.Fire(ctx, "ev", nil)
	if !ran {
		t.Error("the chain must continue past a skipped entry")
	}
}

func TestConstructionPanicContained(t *testing.T) {
	catalog := service.NewCatalog()
	catalog.MustRegister(service.Definition{
		Identity: "volatile",
		New:      func() any { panic("constructor exploded") },
		Bind: func(b *service.Binder) {
			service.On(b, "ev", func(_ *probe, _ *service.Context) service.Result {
				return service.Stop(true)
			})
		},
	})

	o := orchestrator.New(catalog, orchestrator.WithLogger(quietLogger()))
	ctx := context.Background()
	o.Register(ctx, service.NewDescriptor("volatile"))

	ret := o.Fire(ctx, "ev", nil)
	if ret.Stopped {
		t.Error("entry with a panicking constructor must be skipped")
	}
}
