package lua

import "errors"

var (
	// ErrStateClosed indicates an operation on a closed Lua state.
	ErrStateClosed = errors.New("lua: state is closed")
	// ErrServiceNotFound indicates a script no longer declares the
	// requested service.
	ErrServiceNotFound = errors.New("lua: script does not declare service")
)
