package orchestrator_test

import (
	"context"
	"testing"

	"github.com/dshills/orchestrate/orchestrator"
	"github.com/dshills/orchestrate/service"
)

func TestPreHooksRunHighestFirst(t *testing.T) {
	o := orchestrator.New(service.NewCatalog(), orchestrator.WithLogger(quietLogger()))

	var order []string
	pre := func(name string, prio int) orchestrator.PreFireHook {
		return orchestrator.PreFireFunc(name, prio,
			func(string, *service.Context) bool {
				order = append(order, name)
				return true
			})
	}
	o.RegisterPreHook(pre("low", 1))
	o.RegisterPreHook(pre("high", 100))
	o.RegisterPreHook(pre("mid", 50))

	o.Fire(context.Background(), "ev", nil)

	want := []string{"high", "mid", "low"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestPostHooksRunLowestFirst(t *testing.T) {
	o := orchestrator.New(service.NewCatalog(), orchestrator.WithLogger(quietLogger()))

	var order []string
	post := func(name string, prio int) orchestrator.PostFireHook {
		return orchestrator.PostFireFunc(name, prio,
			func(string, *service.Context, *orchestrator.Return) {
				order = append(order, name)
			})
	}
	o.RegisterPostHook(post("high", 100))
	o.RegisterPostHook(post("low", 1))

	o.Fire(context.Background(), "ev", nil)

	if len(order) != 2 || order[0] != "low" || order[1] != "high" {
		t.Errorf("expected low before high, got %v", order)
	}
}

func TestHookReplaceByName(t *testing.T) {
	o := orchestrator.New(service.NewCatalog(), orchestrator.WithLogger(quietLogger()))

	calls := map[string]int{}
	o.RegisterPreHook(orchestrator.PreFireFunc("gate", 0,
		func(string, *service.Context) bool {
			calls["old"]++
			return true
		}))
	o.RegisterPreHook(orchestrator.PreFireFunc("gate", 0,
		func(string, *service.Context) bool {
			calls["new"]++
			return true
		}))

	o.Fire(context.Background(), "ev", nil)

	if calls["old"] != 0 {
		t.Error("replaced hook must not run")
	}
	if calls["new"] != 1 {
		t.Errorf("replacement hook should run once, ran %d", calls["new"])
	}
}

func TestUnregisterUnknownHook(t *testing.T) {
	o := orchestrator.New(service.NewCatalog(), orchestrator.WithLogger(quietLogger()))
	if o.UnregisterHook("ghost") {
		t.Error("expected false for unknown hook")
	}
}
