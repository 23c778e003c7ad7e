package leave_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fullTimer() leave.Employee {
	return leave.Employee{
		ID:             "emp-1",
		Code:           "EMP001",
		Name:           "Alice Johnson",
		Department:     "Engineering",
		EmploymentType: "Full-time",
	}
}

func partTimer() leave.Employee {
	return leave.Employee{
		ID:             "emp-2",
		Code:           "EMP002",
		Name:           "Bob Smith",
		EmploymentType: "Part-time",
	}
}

func annualLeave() leave.LeaveType {
	return leave.LeaveType{
		ID:             "lt-annual",
		Name:           "Annual Leave",
		Code:           "AL",
		Unit:           generic.UnitDay,
		Quota:          decimal.NewFromInt(10),
		EmploymentType: "Full-time",
	}
}

func hourlyLeave() leave.LeaveType {
	return leave.LeaveType{
		ID:             "lt-hours",
		Name:           "Personal Hours",
		Unit:           generic.UnitHour,
		Quota:          decimal.NewFromInt(40),
		EmploymentType: "Part-time",
	}
}

// dayRecord is an id-addressed record with one full-day entry per date.
func dayRecord(id string, e leave.Employee, lt leave.LeaveType, dates ...generic.TimePoint) leave.LeaveRecord {
	r := leave.LeaveRecord{
		ID:          id,
		EmployeeID:  e.ID,
		LeaveTypeID: lt.ID,
		TypeName:    lt.Name,
		Unit:        lt.Unit,
		Amount:      leave.Float(float64(len(dates))),
	}
	for _, d := range dates {
		r.Days = append(r.Days, leave.DayEntry{Date: d, Amount: leave.Float(1), CountsTowardQuota: leave.QuotaFlagTrue})
	}
	if len(dates) > 0 {
		r.StartDate = dates[0]
		r.EndDate = dates[len(dates)-1]
	}
	return r
}
