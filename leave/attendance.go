package leave

import (
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// ATTENDANCE STATUS RESOLVER
// =============================================================================

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusWeekend AttendanceStatus = "weekend"
	StatusOnLeave AttendanceStatus = "on-leave"
)

// Rolling window around today used by the attendance grid.
const (
	AttendanceDaysBefore = 15
	AttendanceDaysAfter  = 15
)

// AttendanceDayStatus is the derived status of one employee on one day.
// HasDocument, RecordID and LeaveTypeName are set only when on leave.
type AttendanceDayStatus struct {
	Date          generic.TimePoint
	Status        AttendanceStatus
	HasDocument   bool
	RecordID      string
	LeaveTypeName string
}

// ResolveAttendanceStatus decides the employee's status on date:
//
//	on-leave  if any of the employee's records has a day entry on date
//	weekend   else if date is a Saturday or Sunday
//	present   otherwise
//
// Leave wins over weekend. There is no absent state.
func ResolveAttendanceStatus(e Employee, date generic.TimePoint, records []LeaveRecord) AttendanceDayStatus {
	return resolveOwned(date, RecordsForEmployee(records, e))
}

// resolveOwned assumes records already belong to the employee.
func resolveOwned(date generic.TimePoint, records []LeaveRecord) AttendanceDayStatus {
	status := AttendanceDayStatus{Date: date}
	for _, r := range records {
		if !r.CoversDate(date) {
			continue
		}
		if status.Status != StatusOnLeave {
			status.Status = StatusOnLeave
			status.RecordID = r.ID
			status.LeaveTypeName = r.TypeName
		}
		if r.HasDocument() {
			status.HasDocument = true
		}
	}
	if status.Status == StatusOnLeave {
		return status
	}
	if date.IsWeekend() {
		status.Status = StatusWeekend
		return status
	}
	status.Status = StatusPresent
	return status
}

// AttendanceWindow returns the 31 calendar days centered on the day of now.
// Callers must take now once per render so the window cannot straddle midnight.
func AttendanceWindow(now time.Time) []generic.TimePoint {
	return generic.DateWindow(generic.DateOf(now), AttendanceDaysBefore, AttendanceDaysAfter)
}

// AttendanceRow is one employee's line of the attendance grid.
type AttendanceRow struct {
	Employee Employee
	Days     []AttendanceDayStatus
}

// AttendanceGrid resolves every employee against every day of window.
func AttendanceGrid(employees []Employee, window []generic.TimePoint, records []LeaveRecord) []AttendanceRow {
	rows := make([]AttendanceRow, 0, len(employees))
	for _, e := range employees {
		owned := RecordsForEmployee(records, e)
		row := AttendanceRow{Employee: e, Days: make([]AttendanceDayStatus, len(window))}
		for i, d := range window {
			row.Days[i] = resolveOwned(d, owned)
		}
		rows = append(rows, row)
	}
	return rows
}
