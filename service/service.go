// Package service defines the contracts shared by the orchestrator and
// its discovery sources: service definitions and descriptors, handler
// binding, dispatch results, and the per-fire context.
package service

// Retention governs whether a service instance outlives the dispatch
// that created it.
type Retention uint8

const (
	// Transient services are constructed for a single dispatch and
	// then discarded.
	Transient Retention = iota
	// Resident services are constructed once, cached by identity, and
	// reused for the remainder of the process lifetime.
	Resident
)

// String returns the string representation of the retention policy.
func (r Retention) String() string {
	switch r {
	case Transient:
		return "transient"
	case Resident:
		return "resident"
	default:
		return "unknown"
	}
}

// ParseRetention parses a retention policy name.
// Returns false if the name is not recognized.
func ParseRetention(s string) (Retention, bool) {
	switch s {
	case "transient":
		return Transient, true
	case "resident":
		return Resident, true
	default:
		return Transient, false
	}
}

// Handler is the type-erased form every bound handler is stored in.
// The instance is the live service the handler was bound for.
type Handler func(inst any, ctx *Context) Result

// Factory constructs a service instance from a descriptor's static
// arguments. Factories are registered by name in a Catalog and selected
// by the descriptor's Factory field.
type Factory func(args map[string]any) any

// Definition describes one service type: its identity, its dispatch
// defaults, its construction path, and the procedure that binds its
// event handlers. Definitions are the compile-time replacement for
// string-to-type reflection: every loadable service has exactly one
// Definition registered in a Catalog.
type Definition struct {
	// Identity uniquely names the service type. Required. It is the
	// dedup key for registration and the instance store key.
	Identity string

	// Priority is the default dispatch priority; higher runs first.
	// A descriptor may override it.
	Priority int

	// Retention is the default retention policy. A descriptor may
	// override it.
	Retention Retention

	// New constructs an instance with no arguments. Required unless
	// every descriptor for this definition names a factory.
	New func() any

	// Bind registers the definition's event handlers into the given
	// Binder. Bind must be idempotent and side-effect-free: it only
	// builds a table and may run more than once. A nil Bind registers
	// no handlers.
	Bind func(*Binder)
}
