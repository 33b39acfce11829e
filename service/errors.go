package service

import "errors"

// Catalog errors.
var (
	// ErrMissingIdentity indicates a definition with an empty identity.
	ErrMissingIdentity = errors.New("service: definition identity is required")
	// ErrDuplicateIdentity indicates a definition identity registered twice.
	ErrDuplicateIdentity = errors.New("service: identity already registered")
	// ErrMissingFactoryName indicates a factory registered with an empty name.
	ErrMissingFactoryName = errors.New("service: factory name is required")
	// ErrDuplicateFactory indicates a factory name registered twice.
	ErrDuplicateFactory = errors.New("service: factory already registered")
	// ErrNilFactory indicates a nil factory function.
	ErrNilFactory = errors.New("service: factory function is nil")
)
