// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// ValidationError marks malformed caller input. Always client-fault,
// detected before any remote call or ledger mutation.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// DuplicateReferenceError signals a create with a reference that already
// exists under a different payload. Identical replays are returned
// idempotently and never raise this.
type DuplicateReferenceError struct {
	Reference string
}

func (e *DuplicateReferenceError) Error() string {
	return "duplicate reference: " + e.Reference
}

// GatewayError carries an explicit rejection from the upstream provider.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.Status, e.Message)
}

// NetworkError wraps a transport failure where no usable response arrived.
// The remote side may still have accepted the request, so ledger entries
// created before the call are left pending for later reconciliation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
