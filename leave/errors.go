package leave

import (
	"fmt"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// VALIDATION ERRORS - One sentinel per user-facing cause
// =============================================================================

var (
	ErrNoteRequired    = fmt.Errorf("note is required: %w", generic.ErrInvalidInput)
	ErrDatesRequired   = fmt.Errorf("date is required: %w", generic.ErrInvalidInput)
	ErrInvalidDate     = fmt.Errorf("date is not a valid calendar date: %w", generic.ErrInvalidInput)
	ErrInvertedRange   = fmt.Errorf("end date is before start date: %w", generic.ErrInvalidPeriod)
	ErrRangeTooLong    = fmt.Errorf("leave may span at most %d days: %w", MaxRequestDays, generic.ErrInvalidPeriod)
	ErrTimesRequired   = fmt.Errorf("start and end time are required: %w", generic.ErrInvalidInput)
	ErrInvalidTime     = fmt.Errorf("time is not a valid clock time: %w", generic.ErrInvalidInput)
	ErrEmptyTimeRange  = fmt.Errorf("end time must be after start time: %w", generic.ErrInvalidPeriod)
	ErrUnsupportedUnit = fmt.Errorf("leave type unit must be Day or Hour: %w", generic.ErrInvalidUnit)
)

// =============================================================================
// LOOKUP ERRORS - Service level only
// =============================================================================

var (
	ErrEmployeeNotFound  = fmt.Errorf("employee: %w", generic.ErrEntityNotFound)
	ErrLeaveTypeNotFound = fmt.Errorf("leave type: %w", generic.ErrEntityNotFound)
)

// ErrDuplicateEmployeeCode is returned by stores when another employee
// already holds the same normalized code.
var ErrDuplicateEmployeeCode = fmt.Errorf("employee code already in use: %w", generic.ErrDuplicateID)

// RequestError names the input field a validation error applies to.
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error) error {
	return &RequestError{Field: field, Err: err}
}
