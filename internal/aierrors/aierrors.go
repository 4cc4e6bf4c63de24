// Package aierrors defines the typed errors used across the resolver's
// internal packages: a NetworkError for transport-layer failures, a
// ValidationError for rejected inputs, and a LookupError carrying the
// resolution status taxonomy.
package aierrors

import (
	"fmt"

	"github.com/aresinfo/addrinfo/internal/protocol"
)

// NetworkError reports a failure from the DNS channel's transport layer.
type NetworkError struct {
	Operation string
	Err       error
	Details   string
}

func (e *NetworkError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Message)
}

// LookupError carries one of the status codes produced by the
// resolution state machine, with the step that raised it.
type LookupError struct {
	Status protocol.Status
	Step   string
	Err    error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Status)
}

func (e *LookupError) Unwrap() error { return e.Err }

// New builds a LookupError for the given step and status, with no
// underlying cause.
func New(step string, status protocol.Status) *LookupError {
	return &LookupError{Status: status, Step: step}
}

// Wrap builds a LookupError for the given step and status, wrapping an
// underlying cause.
func Wrap(step string, status protocol.Status, err error) *LookupError {
	return &LookupError{Status: status, Step: step, Err: err}
}
