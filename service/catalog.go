package service

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is the typed table mapping service identities to their
// definitions, and factory names to factory functions. It replaces
// runtime string-to-type resolution: a descriptor resolves only if its
// type was registered here.
//
// A Catalog is explicitly constructed and owned; there is no package
// global. Registration may happen from any goroutine.
type Catalog struct {
	mu        sync.RWMutex
	defs      map[string]Definition
	factories map[string]Factory
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		defs:      make(map[string]Definition),
		factories: make(map[string]Factory),
	}
}

// Register adds a definition to the catalog.
// Registering an identity twice is an error; the first wins.
func (c *Catalog) Register(def Definition) error {
	if def.Identity == "" {
		return ErrMissingIdentity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.defs[def.Identity]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, def.Identity)
	}
	c.defs[def.Identity] = def
	return nil
}

// MustRegister adds a definition and panics on error. Intended for
// static registration at program start.
func (c *Catalog) MustRegister(def Definition) {
	if err := c.Register(def); err != nil {
		panic(err)
	}
}

// RegisterFactory adds a named factory to the catalog.
func (c *Catalog) RegisterFactory(name string, fn Factory) error {
	if name == "" {
		return ErrMissingFactoryName
	}
	if fn == nil {
		return ErrNilFactory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFactory, name)
	}
	c.factories[name] = fn
	return nil
}

// Lookup returns the definition for an identity.
func (c *Catalog) Lookup(identity string) (Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[identity]
	return def, ok
}

// Factory returns the factory registered under a name.
func (c *Catalog) Factory(name string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.factories[name]
	return fn, ok
}

// Has returns true if an identity is registered.
func (c *Catalog) Has(identity string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.defs[identity]
	return ok
}

// Identities returns all registered identities, sorted.
func (c *Catalog) Identities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
