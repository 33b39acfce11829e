package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/orchestrate/service"
)

// Instance is a live Lua-scripted service. Each instance owns its own
// interpreter state: resident services keep one for process lifetime,
// transient services get a fresh one per dispatch.
type Instance struct {
	name     string
	path     string
	state    *State
	handlers map[string]*lua.LFunction
}

// newInstance re-executes a script and binds to its declaration of the
// named service.
func newInstance(path, name string) (*Instance, error) {
	st, decls, err := runScript(path)
	if err != nil {
		return nil, err
	}

	for _, d := range decls {
		if d.declareErr == nil && d.name == name {
			return &Instance{
				name:     name,
				path:     path,
				state:    st,
				handlers: d.handlers,
			}, nil
		}
	}

	st.Close()
	return nil, fmt.Errorf("%w: %s in %s", ErrServiceNotFound, name, path)
}

// Name returns the service identity this instance implements.
func (in *Instance) Name() string {
	return in.name
}

// Close releases the instance's interpreter state.
func (in *Instance) Close() error {
	return in.state.Close()
}

// invoke runs the script's handler for an event and maps its return
// values onto a dispatch result.
func (in *Instance) invoke(event string, ctx *service.Context) service.Result {
	fn, ok := in.handlers[event]
	if !ok {
		return service.Failf("lua service %s: no handler for event %q", in.name, event)
	}

	in.state.mu.Lock()
	defer in.state.mu.Unlock()

	if in.state.closed {
		return service.Fail(fmt.Errorf("lua service %s: %w", in.name, ErrStateClosed))
	}

	arg := in.contextTable(ctx)
	results, err := in.state.callFunction(fn, arg)
	if err != nil {
		return service.Fail(fmt.Errorf("lua service %s: %w", in.name, err))
	}
	return interpretResults(results)
}

// contextTable builds the ctx table handed to a Lua handler: event,
// args, params, and get/set accessors over the shared fire bag. The
// caller must hold the state mutex.
func (in *Instance) contextTable(ctx *service.Context) *lua.LTable {
	L := in.state.L

	t := L.NewTable()
	t.RawSetString("event", lua.LString(ctx.Event))
	t.RawSetString("args", toLua(L, anyMap(ctx.Args)))
	t.RawSetString("params", toLua(L, anyMap(ctx.Params)))

	bag := ctx.Data
	t.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		if bag == nil {
			L.Push(lua.LNil)
			return 1
		}
		v, ok := bag.Get(key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLua(L, v))
		return 1
	}))
	t.RawSetString("set", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		if bag != nil {
			bag.Set(key, toGo(L.Get(2)))
		}
		return 0
	}))

	return t
}

// anyMap keeps nil maps as empty tables on the Lua side.
func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// interpretResults maps a handler's Lua return values onto a Result:
// nothing or true continues, `false, message` fails and continues,
// `"stop", value` terminates the chain with an aggregate value.
func interpretResults(results []lua.LValue) service.Result {
	if len(results) == 0 {
		return service.Continue()
	}

	switch first := results[0].(type) {
	case lua.LBool:
		if bool(first) {
			return service.Continue()
		}
		msg := "handler reported failure"
		if len(results) > 1 {
			if s, ok := results[1].(lua.LString); ok {
				msg = string(s)
			}
		}
		return service.Failf("%s", msg)

	case lua.LString:
		if string(first) == "stop" {
			var value any
			if len(results) > 1 {
				value = toGo(results[1])
			}
			return service.Stop(value)
		}
		return service.Continue()

	default:
		return service.Continue()
	}
}
