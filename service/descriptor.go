package service

// Descriptor is an inert record produced by a discovery source
// describing one service to load. It is immutable once created and is
// consumed exactly once by registration; only its resolved projection
// is retained afterwards.
type Descriptor struct {
	// Type names the service definition to load. Required.
	Type string

	// Priority overrides the definition's default priority when set.
	Priority *int

	// Retention overrides the definition's default retention when set.
	Retention *Retention

	// Args is the static argument map made available to every handler
	// invocation for this service, and to its factory.
	Args map[string]any

	// Factory names a registered factory to construct the service
	// instead of the definition's New function.
	Factory string
}

// NewDescriptor creates a descriptor for a type with no overrides.
func NewDescriptor(typeName string) Descriptor {
	return Descriptor{Type: typeName}
}

// WithPriority returns a copy of the descriptor with a priority override.
func (d Descriptor) WithPriority(priority int) Descriptor {
	d.Priority = &priority
	return d
}

// WithRetention returns a copy of the descriptor with a retention override.
func (d Descriptor) WithRetention(r Retention) Descriptor {
	d.Retention = &r
	return d
}

// WithArgs returns a copy of the descriptor with static arguments.
func (d Descriptor) WithArgs(args map[string]any) Descriptor {
	d.Args = args
	return d
}

// WithFactory returns a copy of the descriptor with a factory reference.
func (d Descriptor) WithFactory(name string) Descriptor {
	d.Factory = name
	return d
}

// EffectivePriority resolves the dispatch priority against the
// definition's default.
func (d Descriptor) EffectivePriority(def Definition) int {
	if d.Priority != nil {
		return *d.Priority
	}
	return def.Priority
}

// EffectiveRetention resolves the retention policy against the
// definition's default.
func (d Descriptor) EffectiveRetention(def Definition) Retention {
	if d.Retention != nil {
		return *d.Retention
	}
	return def.Retention
}
