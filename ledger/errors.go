/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP status codes; nothing else should
  need to inspect error strings.

ERROR CATEGORIES:
  1. Validation errors - caller must correct input, never retried
  2. Not-found errors  - referenced worker/project no longer exists
  3. Conflict errors   - invariant would be violated (reopen, duplicate)
  4. Upstream errors   - store or upload collaborator failed
  5. Auth errors       - missing/invalid bearer credential

USAGE:
  if ledger.IsNotFound(err) { ... }
  var verr *ledger.ValidationError
  if errors.As(err, &verr) { ... verr.Field ... }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all input validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write would violate an invariant,
	// e.g. reopening a completed project.
	ErrConflict = errors.New("conflict")

	// ErrUpstream is returned when a collaborator (store, CDN) fails.
	ErrUpstream = errors.New("upstream failure")

	// ErrAuth is returned for missing or invalid credentials.
	ErrAuth = errors.New("unauthorized")

	// ErrRateUnavailable is returned when project creation cannot read a
	// usable per-foot rate. Creation fails closed rather than writing a
	// zero rate onto the project.
	ErrRateUnavailable = errors.New("rate unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // "worker", "project", "attendance", "payment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// UpstreamError wraps a collaborator failure with the operation attempted.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream failure: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// AuthError carries the (safe to surface) reason for a 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return "unauthorized: " + e.Reason }

func (e *AuthError) Unwrap() error { return ErrAuth }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsUpstream(err error) bool   { return errors.Is(err, ErrUpstream) }
func IsAuth(err error) bool       { return errors.Is(err, ErrAuth) }
