package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedAction is returned when a reserved responder method is called.
var ErrUnsupportedAction = errors.New("unsupported client action")

// ErrSealed is returned when a rule is registered after the manager was sealed.
var ErrSealed = errors.New("manager is sealed; registration is closed")

// ErrAnonymousHandler is returned when a rule is registered without a state name
// and no name can be derived from the handler.
var ErrAnonymousHandler = errors.New("cannot derive state name from anonymous handler")

// ErrMissingHandler signals an internal consistency failure: a rule matched but
// its state name has no registered handler.
var ErrMissingHandler = errors.New("no handler registered for dialogue state")

// InvalidSpecificationError reports a malformed or conflicting rule specification.
// It is raised at registration time, never during dispatch.
type InvalidSpecificationError struct {
	Field  string // The offending option
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation, if useful
}

func (e *InvalidSpecificationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid rule specification for %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid rule specification for %q: %s (got %T)", e.Field, e.Reason, e.Value)
}

// HandlerConflictError reports a state name re-registered with a different handler.
type HandlerConflictError struct {
	State string
}

func (e *HandlerConflictError) Error() string {
	return fmt.Sprintf("handler mapping would overwrite existing dialogue state %q", e.State)
}

// ContextError reports a context that violates the producer contract.
type ContextError struct {
	Field  string
	Reason string
}

func (e *ContextError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("context is missing required field %q", e.Field)
	}
	return fmt.Sprintf("invalid context field %q: %s", e.Field, e.Reason)
}
