package service

import "fmt"

// Flow controls whether the dispatch chain continues past a handler.
type Flow uint8

const (
	// FlowContinue proceeds to the next entry in the chain.
	FlowContinue Flow = iota
	// FlowStop terminates the chain; no lower-priority entries run.
	FlowStop
)

// String returns a string representation of the flow.
func (f Flow) String() string {
	switch f {
	case FlowContinue:
		return "continue"
	case FlowStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Status indicates whether a handler succeeded.
type Status uint8

const (
	// StatusOK indicates successful execution.
	StatusOK Status = iota
	// StatusFailed indicates the handler failed. A failed handler does
	// not abort the chain unless it also stops it.
	StatusFailed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of one handler invocation.
type Result struct {
	// Flow controls whether the chain continues.
	Flow Flow

	// Status indicates success or failure.
	Status Status

	// Value is the aggregate return value carried by a stopping
	// result. Ignored when Flow is FlowContinue.
	Value any

	// Message is an optional diagnostic message.
	Message string

	// Err contains any error that occurred.
	Err error
}

// IsOK returns true if the handler succeeded.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// Stopped returns true if the result terminates the chain.
func (r Result) Stopped() bool {
	return r.Flow == FlowStop
}

// Continue creates a successful, continuing result.
func Continue() Result {
	return Result{}
}

// ContinueWithMessage creates a successful, continuing result with a message.
func ContinueWithMessage(msg string) Result {
	return Result{Message: msg}
}

// Fail creates a failed but continuing result.
func Fail(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

// Failf creates a failed but continuing result with a formatted message.
func Failf(format string, args ...any) Result {
	err := fmt.Errorf(format, args...)
	return Result{Status: StatusFailed, Err: err, Message: err.Error()}
}

// Stop creates a successful result that terminates the chain, carrying
// the aggregate return value.
func Stop(value any) Result {
	return Result{Flow: FlowStop, Value: value}
}

// StopWithMessage creates a stopping result with a message.
func StopWithMessage(value any, msg string) Result {
	return Result{Flow: FlowStop, Value: value, Message: msg}
}

// StopFailed creates a stopping result that also records a failure.
// The carried value still wins as the aggregate return value.
func StopFailed(value any, err error) Result {
	return Result{Flow: FlowStop, Status: StatusFailed, Value: value, Err: err}
}

// WithMessage returns a copy of the result with the specified message.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}
