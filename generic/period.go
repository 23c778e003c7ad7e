package generic

// =============================================================================
// PERIOD - An inclusive range of calendar days
// =============================================================================

// Period is the inclusive day range [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - A leave request: first day - last day
//   - The attendance window: today-15 - today+15
type Period struct {
	Start TimePoint
	End   TimePoint
}

// CalendarYear returns Jan 1 - Dec 31 of year.
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool { return p.End.AfterOrEqual(p.Start) }

// Days returns all days in the period, walking one calendar day at a time.
// An inverted period yields no days.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Len returns the number of calendar days in the period.
func (p Period) Len() int { return len(p.Days()) }

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
