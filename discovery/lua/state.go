// Package lua discovers services scripted in Lua. A script declares
// one or more services by calling the service() global with a table:
//
//	service{
//	  name      = "greeter",
//	  priority  = 50,
//	  retention = "resident",
//	  args      = { lang = "en" },
//	  handlers  = {
//	    ["app.launch"] = function(ctx)
//	      ctx.set("greeting", "hello " .. (ctx.args.lang or "?"))
//	    end,
//	    ["app.url"] = function(ctx)
//	      return "stop", ctx.params.url
//	    end,
//	  },
//	}
//
// A handler returns nothing (or true) to continue, `false, message` to
// record a failure and continue, or `"stop", value` to terminate the
// chain with an aggregate value.
package lua

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua LState for one script.
//
// LState is not goroutine-safe; the mutex serializes all access. Lua
// execution itself is inherently single-threaded.
type State struct {
	L      *lua.LState
	mu     sync.Mutex
	closed bool
}

// NewState creates a sandboxed Lua state with only safe standard
// libraries opened.
func NewState() *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // opened selectively below
	})
	openSafeLibraries(L)
	return &State{L: L}
}

// openSafeLibraries opens only safe Lua standard libraries.
// io, os, debug, and package stay closed: scripts build dispatch
// tables, they do not touch the machine.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file synchronously.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes Lua source synchronously.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery. The caller
// must hold the mutex.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// callFunction calls a Lua function value with the given arguments and
// collects all return values. The caller must hold the mutex.
func (s *State) callFunction(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	stackTop := s.L.GetTop()

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	var callErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("lua panic: %v", r)
			}
		}()
		callErr = s.L.PCall(len(args), lua.MultRet, nil)
	}()
	if callErr != nil {
		s.L.SetTop(stackTop)
		return nil, callErr
	}

	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// setGlobal sets a global variable. The caller must hold the mutex.
func (s *State) setGlobal(name string, value lua.LValue) {
	s.L.SetGlobal(name, value)
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the underlying Lua state.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
