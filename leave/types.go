// Package leave implements leave accounting and attendance aggregation.
//
// It derives consumption, balances, request validity and daily attendance
// status from already-loaded employees, leave types and leave records. The
// pure functions in this package never mutate their inputs and never fail on
// bad historical data; Service wires them to the collaborator interfaces in
// store.go.
package leave

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is identified by an immutable internal ID and a human-assigned
// Code. Historical records may reference either.
type Employee struct {
	ID             string
	Code           string
	Name           string
	Department     string
	EmploymentType string
}

// Keys returns every identifier a leave record may use for this employee.
func (e Employee) Keys() generic.KeySet { return generic.NewKeySet(e.ID, e.Code) }

// =============================================================================
// LEAVE TYPE
// =============================================================================

// LeaveType is a category of absence scoped to exactly one employment type.
type LeaveType struct {
	ID             string
	Name           string
	Code           string
	Unit           generic.Unit
	Quota          decimal.Decimal
	EmploymentType string
}

// AppliesTo reports whether the leave type is scoped to the employee's employment type.
func (lt LeaveType) AppliesTo(e Employee) bool {
	return generic.NewKeySet(lt.EmploymentType).Matches(e.EmploymentType)
}

// AccountingUnit is the unit consumption is summed in. Leave types with a
// missing or unknown unit account in days.
func (lt LeaveType) AccountingUnit() generic.Unit {
	if lt.Unit.Valid() {
		return lt.Unit
	}
	return generic.UnitDay
}

func (lt LeaveType) QuotaAmount() generic.Amount {
	q := lt.Quota
	if q.IsNegative() {
		q = decimal.Zero
	}
	return generic.Amount{Value: generic.Normalize(q), Unit: lt.AccountingUnit()}
}

// =============================================================================
// QUOTA FLAG - Tri-state "counts toward quota"
// =============================================================================

// QuotaFlag is the interpreted value of a day entry's countsTowardQuota field.
// External sources serialize it as a boolean, a string, or omit it.
type QuotaFlag int

const (
	QuotaFlagUnset QuotaFlag = iota // absent: counts
	QuotaFlagTrue
	QuotaFlagFalse
)

// Counts reports whether the day contributes to consumption. Only an explicit
// false excludes a day.
func (f QuotaFlag) Counts() bool { return f != QuotaFlagFalse }

// ParseQuotaFlag interprets a loosely typed countsTowardQuota value.
// false and "false" (any case, surrounding spaces ignored) are false-like,
// true and "true" are true-like, everything else is treated as absent.
func ParseQuotaFlag(v any) QuotaFlag {
	switch t := v.(type) {
	case bool:
		if t {
			return QuotaFlagTrue
		}
		return QuotaFlagFalse
	case *bool:
		if t == nil {
			return QuotaFlagUnset
		}
		return ParseQuotaFlag(*t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "false":
			return QuotaFlagFalse
		case "true":
			return QuotaFlagTrue
		}
	}
	return QuotaFlagUnset
}

func (f QuotaFlag) MarshalJSON() ([]byte, error) {
	switch f {
	case QuotaFlagTrue:
		return []byte("true"), nil
	case QuotaFlagFalse:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (f *QuotaFlag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = ParseQuotaFlag(v)
	return nil
}

// =============================================================================
// LEAVE RECORD
// =============================================================================

// DayEntry is one row of a record's day-by-day decomposition. A nil Amount
// counts as a full unit.
type DayEntry struct {
	Date              generic.TimePoint
	Amount            *float64
	CountsTowardQuota QuotaFlag
}

// LeaveRecord is one persisted leave submission, possibly spanning several days.
//
// Newer records reference the employee by EmployeeID and the leave type by
// LeaveTypeID. Legacy or externally-sourced records may carry only the
// employee code and the leave type name (TypeName). TypeName and Unit are
// denormalized at recording time and survive deletion of the leave type.
type LeaveRecord struct {
	ID           string
	EmployeeID   string
	EmployeeCode string
	LeaveTypeID  string
	TypeName     string
	Unit         generic.Unit

	// Amount is the single-number fallback quantity; nil when absent.
	Amount *float64

	StartDate generic.TimePoint
	EndDate   generic.TimePoint

	// Days, when non-empty, is the authoritative source of consumption.
	Days []DayEntry

	Note        string
	Attachments []string
	CreatedAt   time.Time
}

// EmployeeRef is the identifier the record uses for its employee: the
// internal ID when present, otherwise the employee code.
func (r LeaveRecord) EmployeeRef() string {
	return generic.FirstNonBlank(r.EmployeeID, r.EmployeeCode)
}

// HasDocument reports whether at least one attachment reference is present.
func (r LeaveRecord) HasDocument() bool {
	for _, a := range r.Attachments {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// CoversDate reports whether one of the record's day entries falls on date.
func (r LeaveRecord) CoversDate(date generic.TimePoint) bool {
	for _, d := range r.Days {
		if d.Date.Equal(date) {
			return true
		}
	}
	return false
}

// AccountingDate is the day used to attribute the record to an accounting
// year: the first day entry, else the start date, else the creation day.
func (r LeaveRecord) AccountingDate() generic.TimePoint {
	var first generic.TimePoint
	for _, d := range r.Days {
		if d.Date.IsZero() {
			continue
		}
		if first.IsZero() || d.Date.Before(first) {
			first = d.Date
		}
	}
	if !first.IsZero() {
		return first
	}
	if !r.StartDate.IsZero() {
		return r.StartDate
	}
	if !r.CreatedAt.IsZero() {
		return generic.DateOf(r.CreatedAt)
	}
	return generic.TimePoint{}
}

// InYear reports whether the record is attributed to year. Year 0 matches
// every record; a record with no datable field matches only year 0.
func (r LeaveRecord) InYear(year int) bool {
	if year == 0 {
		return true
	}
	d := r.AccountingDate()
	return !d.IsZero() && d.Year() == year
}

// Float returns a pointer to f, for building DayEntry and LeaveRecord amounts.
func Float(f float64) *float64 { return &f }
