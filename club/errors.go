/*
errors.go - Centralized error types for the club domain

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Services and the API layer classify errors with errors.Is against the
  sentinels below.

ERROR CATEGORIES:
  1. Validation errors  - a field or parameter violates a stated constraint
  2. Duplicate relation - (athlete, payer, role) already linked
  3. Not found          - a referenced entity does not exist
  4. Domain errors      - business-rule violations not covered above

USAGE:
  if errors.Is(err, club.ErrValidation) {
      // map to a 400-class response
  }

SEE ALSO:
  - athlete.go, period.go: Producers of these errors
  - api/handlers.go: Maps categories to HTTP status codes
*/
package club

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when a single field or parameter violates a
	// stated constraint. Always detected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateRelation is returned when AddPayer targets an existing
	// (athlete, payer, role) triple.
	ErrDuplicateRelation = errors.New("payer already linked with this role")

	// ErrNotFound is returned by stores when a referenced athlete, payer or
	// period does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDomain is the catch-all for business-rule violations, e.g. setting a
	// membership for a period that was never seeded.
	ErrDomain = errors.New("domain rule violated")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError identifies the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateRelationError describes the triple that already exists.
type DuplicateRelationError struct {
	AthleteID AthleteID
	PayerID   PayerID
	Role      PayerType
}

func (e *DuplicateRelationError) Error() string {
	return fmt.Sprintf("payer %s already linked to athlete %s as %s",
		e.PayerID, e.AthleteID, e.Role)
}

func (e *DuplicateRelationError) Unwrap() error { return ErrDuplicateRelation }

// NotFoundError names the kind of entity and the key that missed.
type NotFoundError struct {
	Kind string // "athlete", "payer", "period"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DomainError carries a business-rule violation message.
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return ErrDomain }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateRelation) ||
		errors.Is(err, ErrDomain)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
