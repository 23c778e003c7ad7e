package generic

import (
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day
// =============================================================================

// DateLayout is the wire format of a calendar day.
const DateLayout = "2006-01-02"

// TimePoint is a calendar day. The underlying time is always midnight UTC so
// that two TimePoints for the same day compare equal regardless of where the
// source timestamp came from.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in t's own location.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. Surrounding whitespace is ignored.
// Values carrying a time component (RFC 3339) are accepted and truncated to
// their calendar day.
func ParseDate(s string) (TimePoint, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return DateOf(t), nil
	}
	if ts, err2 := time.Parse(time.RFC3339, s); err2 == nil {
		return DateOf(ts), nil
	}
	return TimePoint{}, err
}

func Today() TimePoint { return DateOf(time.Now()) }

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// AddDays moves by calendar days, not by 24h multiples.
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool       { wd := tp.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) String() string        { return tp.Time.Format(DateLayout) }

// In returns the start of this calendar day in loc.
func (tp TimePoint) In(loc *time.Location) time.Time {
	return time.Date(tp.Year(), tp.Month(), tp.Day(), 0, 0, 0, 0, loc)
}

// =============================================================================
// DATE WINDOW
// =============================================================================

// DateWindow returns the consecutive calendar days from reference-daysBefore
// through reference+daysAfter inclusive. Negative offsets are treated as zero.
func DateWindow(reference TimePoint, daysBefore, daysAfter int) []TimePoint {
	if daysBefore < 0 {
		daysBefore = 0
	}
	if daysAfter < 0 {
		daysAfter = 0
	}
	period := Period{Start: reference.AddDays(-daysBefore), End: reference.AddDays(daysAfter)}
	return period.Days()
}

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }
