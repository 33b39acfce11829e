package lua

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/orchestrate/service"
)

// decl is one service declaration collected from a script's service()
// calls.
type decl struct {
	name         string
	priority     int
	retention    service.Retention
	args         map[string]any
	handlers     map[string]*lua.LFunction
	events       []string // handler event names, sorted for determinism
	declareErr   error
}

// runScript executes a script in a fresh state and collects its
// service declarations. The returned state owns the declared handler
// functions; close it when the declarations are no longer needed.
func runScript(path string) (*State, []*decl, error) {
	st := NewState()

	var decls []*decl

	st.mu.Lock()
	st.setGlobal("service", st.L.NewFunction(func(L *lua.LState) int {
		t := L.CheckTable(1)
		d := parseDecl(t)
		decls = append(decls, d)
		return 0
	}))
	st.mu.Unlock()

	if err := st.DoFile(path); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("lua: %s: %w", path, err)
	}

	return st, decls, nil
}

// parseDecl extracts one declaration from a service() call's table.
func parseDecl(t *lua.LTable) *decl {
	d := &decl{
		retention: service.Transient,
		handlers:  make(map[string]*lua.LFunction),
	}

	name, ok := t.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		d.declareErr = fmt.Errorf("lua: service declaration missing name")
		return d
	}
	d.name = string(name)

	if p, ok := t.RawGetString("priority").(lua.LNumber); ok {
		d.priority = int(p)
	}

	if r, ok := t.RawGetString("retention").(lua.LString); ok {
		ret, valid := service.ParseRetention(string(r))
		if !valid {
			d.declareErr = fmt.Errorf("lua: service %s: invalid retention %q", d.name, string(r))
			return d
		}
		d.retention = ret
	}

	if a, ok := t.RawGetString("args").(*lua.LTable); ok {
		if m, ok := toGo(a).(map[string]any); ok {
			d.args = m
		}
	}

	if h, ok := t.RawGetString("handlers").(*lua.LTable); ok {
		h.ForEach(func(k, v lua.LValue) {
			event, kok := k.(lua.LString)
			fn, vok := v.(*lua.LFunction)
			if kok && vok && event != "" {
				d.handlers[string(event)] = fn
			}
		})
	}

	for event := range d.handlers {
		d.events = append(d.events, event)
	}
	sort.Strings(d.events)

	return d
}
