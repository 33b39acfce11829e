package service

import (
	"context"
	"sort"
)

// Context is the per-fire, per-entry value bundle passed to every
// handler. Event, Params, and Data are shared across the whole chain of
// one fire call; Args are the static arguments of the entry's own
// descriptor.
type Context struct {
	// Ctx is the caller's context, threaded through for loggers and
	// for executor hand-off. Handlers are not cancelled through it.
	Ctx context.Context

	// Event is the event being fired.
	Event string

	// Args holds the static arguments from the service's descriptor.
	Args map[string]any

	// Params holds the caller-supplied dynamic parameters.
	Params map[string]any

	// Data is the shared user-data bag. It is the same object for
	// every handler invoked during one fire call; an earlier handler
	// writes into it to pass data to a later handler.
	Data *Bag
}

// Param returns a dynamic parameter.
func (c *Context) Param(key string) (any, bool) {
	v, ok := c.Params[key]
	return v, ok
}

// ParamString returns a dynamic parameter as a string, or "".
func (c *Context) ParamString(key string) string {
	return asString(c.Params[key])
}

// ParamInt returns a dynamic parameter as an int, or 0.
func (c *Context) ParamInt(key string) int {
	return asInt(c.Params[key])
}

// ParamBool returns a dynamic parameter as a bool, or false.
func (c *Context) ParamBool(key string) bool {
	b, _ := c.Params[key].(bool)
	return b
}

// Arg returns a static argument.
func (c *Context) Arg(key string) (any, bool) {
	v, ok := c.Args[key]
	return v, ok
}

// ArgString returns a static argument as a string, or "".
func (c *Context) ArgString(key string) string {
	return asString(c.Args[key])
}

// ArgInt returns a static argument as an int, or 0.
func (c *Context) ArgInt(key string) int {
	return asInt(c.Args[key])
}

// Bag is the shared mutable user-data slot for one fire call.
//
// It is intentionally unlocked: handler execution within a fire call is
// strictly sequential, and a Bag never crosses fire calls.
type Bag struct {
	values map[string]any
}

// NewBag creates an empty bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]any)}
}

// Get returns the value stored under a key.
func (b *Bag) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

// GetString returns the value under a key as a string, or "".
func (b *Bag) GetString(key string) string {
	return asString(b.values[key])
}

// GetInt returns the value under a key as an int, or 0.
func (b *Bag) GetInt(key string) int {
	return asInt(b.values[key])
}

// GetBool returns the value under a key as a bool, or false.
func (b *Bag) GetBool(key string) bool {
	v, _ := b.values[key].(bool)
	return v
}

// Set stores a value under a key.
func (b *Bag) Set(key string, value any) {
	b.values[key] = value
}

// Has returns true if a key is present.
func (b *Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Delete removes a key.
func (b *Bag) Delete(key string) {
	delete(b.values, key)
}

// Keys returns all keys, sorted.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored values.
func (b *Bag) Len() int {
	return len(b.values)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
