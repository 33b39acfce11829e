package service

import "sync"

// Binding pairs an event name with a bound handler.
type Binding struct {
	Event   string
	Handler Handler
}

// Binder collects the (event, handler) pairs one service type registers
// interest in. A fresh Binder is passed to a definition's Bind
// procedure during registration. The internal lock matters because Bind
// may run on an arbitrary goroutine and the entries are read back from
// another.
type Binder struct {
	mu      sync.Mutex
	entries []Binding
}

// NewBinder creates an empty binder.
func NewBinder() *Binder {
	return &Binder{}
}

// OnAny appends a type-erased handler for an event. Most callers should
// use the typed On function instead.
func (b *Binder) OnAny(event string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Binding{Event: event, Handler: fn})
}

// Entries returns a snapshot copy of the collected bindings, in
// insertion order. Cross-service ordering is governed by priority, not
// by this order.
func (b *Binder) Entries() []Binding {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Binding, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of collected bindings.
func (b *Binder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// On registers a typed handler for an event. The handler closes over
// the concrete service type at bind time; the stored closure performs a
// checked assertion so that a mismatched instance degrades to a failed,
// continuing result instead of a panic at dispatch time.
func On[S any](b *Binder, event string, fn func(S, *Context) Result) {
	b.OnAny(event, func(inst any, ctx *Context) Result {
		s, ok := inst.(S)
		if !ok {
			return Failf("handler for event %q: instance type %T does not match binding", event, inst)
		}
		return fn(s, ctx)
	})
}
