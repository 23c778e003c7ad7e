package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

func TestResolveAttendanceStatus_StateMachine(t *testing.T) {
	e, lt := fullTimer(), annualLeave()
	records := []leave.LeaveRecord{
		dayRecord("r-weekday", e, lt, date(2024, time.March, 5)),
		dayRecord("r-saturday", e, lt, date(2024, time.March, 9)),
	}

	tests := []struct {
		name string
		date generic.TimePoint
		want leave.AttendanceStatus
	}{
		{"leave on a weekday", date(2024, time.March, 5), leave.StatusOnLeave},
		{"leave wins over weekend", date(2024, time.March, 9), leave.StatusOnLeave},
		{"plain sunday", date(2024, time.March, 10), leave.StatusWeekend},
		{"plain weekday", date(2024, time.March, 6), leave.StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leave.ResolveAttendanceStatus(e, tt.date, records)
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestResolveAttendanceStatus_DocumentFlag(t *testing.T) {
	e, lt := fullTimer(), annualLeave()
	withDoc := dayRecord("r-doc", e, lt, date(2024, time.March, 5))
	withDoc.Attachments = []string{"doc-1"}
	withoutDoc := dayRecord("r-nodoc", e, lt, date(2024, time.March, 6))
	blankDoc := dayRecord("r-blank", e, lt, date(2024, time.March, 7))
	blankDoc.Attachments = []string{"  "}
	records := []leave.LeaveRecord{withDoc, withoutDoc, blankDoc}

	got := leave.ResolveAttendanceStatus(e, date(2024, time.March, 5), records)
	assert.Equal(t, leave.StatusOnLeave, got.Status)
	assert.True(t, got.HasDocument)
	assert.Equal(t, "r-doc", got.RecordID)
	assert.Equal(t, "Annual Leave", got.LeaveTypeName)

	got = leave.ResolveAttendanceStatus(e, date(2024, time.March, 6), records)
	assert.Equal(t, leave.StatusOnLeave, got.Status)
	assert.False(t, got.HasDocument)

	got = leave.ResolveAttendanceStatus(e, date(2024, time.March, 7), records)
	assert.False(t, got.HasDocument)
}

func TestResolveAttendanceStatus_OnlyOwnRecords(t *testing.T) {
	lt := annualLeave()
	records := []leave.LeaveRecord{dayRecord("r1", partTimer(), lt, date(2024, time.March, 5))}

	got := leave.ResolveAttendanceStatus(fullTimer(), date(2024, time.March, 5), records)

	assert.Equal(t, leave.StatusPresent, got.Status)
	assert.Empty(t, got.RecordID)
}

func TestResolveAttendanceStatus_RecordWithoutDaysDoesNotMarkLeave(t *testing.T) {
	e := fullTimer()
	records := []leave.LeaveRecord{{
		ID: "r1", EmployeeID: e.ID, Amount: leave.Float(1),
		StartDate: date(2024, time.March, 5), EndDate: date(2024, time.March, 5),
	}}

	got := leave.ResolveAttendanceStatus(e, date(2024, time.March, 5), records)

	assert.Equal(t, leave.StatusPresent, got.Status)
}

func TestAttendanceWindow_FromSingleSnapshot(t *testing.T) {
	// GIVEN: A clock reading one minute before midnight
	now := time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)

	// WHEN
	window := leave.AttendanceWindow(now)

	// THEN: 31 days centered on the 15th
	require.Len(t, window, leave.AttendanceDaysBefore+1+leave.AttendanceDaysAfter)
	assert.Equal(t, "2024-03-15", window[leave.AttendanceDaysBefore].String())
	assert.Equal(t, "2024-02-29", window[0].String())
	assert.Equal(t, "2024-03-30", window[len(window)-1].String())
}

func TestAttendanceGrid(t *testing.T) {
	alice, bob := fullTimer(), partTimer()
	lt := annualLeave()
	records := []leave.LeaveRecord{
		dayRecord("r1", alice, lt, date(2024, time.March, 4)),
		{ID: "r2", EmployeeCode: "emp002", TypeName: "Personal Hours", Days: []leave.DayEntry{{Date: date(2024, time.March, 5), Amount: leave.Float(2)}}},
	}
	window := []leaveDay{
		{date(2024, time.March, 2), leave.StatusWeekend, leave.StatusWeekend},
		{date(2024, time.March, 4), leave.StatusOnLeave, leave.StatusPresent},
		{date(2024, time.March, 5), leave.StatusPresent, leave.StatusOnLeave},
	}

	rows := leave.AttendanceGrid([]leave.Employee{alice, bob}, datesOf(window), records)

	require.Len(t, rows, 2)
	assert.Equal(t, "emp-1", rows[0].Employee.ID)
	for i, w := range window {
		assert.Equal(t, w.alice, rows[0].Days[i].Status, "alice on %s", w.date)
		assert.Equal(t, w.bob, rows[1].Days[i].Status, "bob on %s", w.date)
		assert.True(t, rows[0].Days[i].Date.Equal(w.date))
	}
}

type leaveDay struct {
	date       generic.TimePoint
	alice, bob leave.AttendanceStatus
}

func datesOf(days []leaveDay) []generic.TimePoint {
	out := make([]generic.TimePoint, len(days))
	for i, d := range days {
		out[i] = d.date
	}
	return out
}
