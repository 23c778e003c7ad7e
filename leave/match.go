package leave

import (
	"strings"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// IDENTITY MATCHER
// =============================================================================

// MatchesEmployee reports whether the record belongs to the employee. The
// record's employee reference may be either the internal ID or the employee
// code; both sides are trimmed and lowercased before comparison.
func MatchesEmployee(r LeaveRecord, e Employee) bool {
	return e.Keys().Matches(r.EmployeeRef())
}

// MatchesLeaveType reports whether the record is of the given leave type.
//
// A record carrying a leave type ID is matched on the ID only. A record
// without one (legacy or externally-sourced) is matched on its free-text
// type name against the leave type's name.
func MatchesLeaveType(r LeaveRecord, lt LeaveType) bool {
	if strings.TrimSpace(r.LeaveTypeID) != "" {
		return generic.NewKeySet(lt.ID).Matches(r.LeaveTypeID)
	}
	return generic.NewKeySet(lt.Name).Matches(r.TypeName)
}

// MatchesEmployeeAndType combines MatchesEmployee and MatchesLeaveType.
func MatchesEmployeeAndType(r LeaveRecord, e Employee, lt LeaveType) bool {
	return MatchesEmployee(r, e) && MatchesLeaveType(r, lt)
}

// RecordsForEmployee returns the subset of records belonging to e, in input order.
func RecordsForEmployee(records []LeaveRecord, e Employee) []LeaveRecord {
	keys := e.Keys()
	var out []LeaveRecord
	for _, r := range records {
		if keys.Matches(r.EmployeeRef()) {
			out = append(out, r)
		}
	}
	return out
}

// FindEmployee returns the first employee known by ref (ID or code).
func FindEmployee(employees []Employee, ref string) (Employee, bool) {
	for _, e := range employees {
		if e.Keys().Matches(ref) {
			return e, true
		}
	}
	return Employee{}, false
}

// FindLeaveType returns the leave type with the given ID, falling back to a
// name match for callers that only know the name.
func FindLeaveType(types []LeaveType, ref string) (LeaveType, bool) {
	for _, lt := range types {
		if generic.NewKeySet(lt.ID).Matches(ref) {
			return lt, true
		}
	}
	for _, lt := range types {
		if generic.NewKeySet(lt.Name).Matches(ref) {
			return lt, true
		}
	}
	return LeaveType{}, false
}
