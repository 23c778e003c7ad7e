/*
errors.go - Centralized error types for the generic layer

PURPOSE:
  All base error categories in one place for consistency and discoverability.
  Domain packages wrap these with their own sentinels so callers can test
  either the precise cause or the broad category with errors.Is.

ERROR CATEGORIES:
  1. Input errors - The caller sent something unusable (HTTP 400)
  2. Lookup errors - A referenced entity does not exist (HTTP 404)
  3. Store errors - Persistence conflicts (HTTP 409)

USAGE:
  var ErrNoteRequired = fmt.Errorf("note is required: %w", generic.ErrInvalidInput)

  if generic.IsClientError(err) {
      // report to the user, never retry
  }

SEE ALSO:
  - leave/errors.go: Domain sentinels wrapping these categories
*/
package generic

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the category of every user-correctable input problem.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidUnit is returned for a unit other than Day or Hour.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrEntityNotFound is returned when a referenced entity doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrDuplicateID is returned when a store already holds an entity with the same ID.
	ErrDuplicateID = errors.New("duplicate id")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidUnit)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsConflict returns true if the error is a store uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}
