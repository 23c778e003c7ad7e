package leave

import (
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// CONSUMPTION AGGREGATOR
// =============================================================================

// ComputeConsumption sums the resolved amount of every record belonging to
// the employee and leave type, across all years. No matching records yields
// zero.
func ComputeConsumption(records []LeaveRecord, e Employee, lt LeaveType) generic.Amount {
	return ComputeConsumptionInYear(records, e, lt, 0)
}

// ComputeConsumptionInYear is ComputeConsumption restricted to records
// attributed to year (see LeaveRecord.InYear). Year 0 means all years.
func ComputeConsumptionInYear(records []LeaveRecord, e Employee, lt LeaveType, year int) generic.Amount {
	used := generic.ZeroAmount(lt.AccountingUnit())
	for _, r := range records {
		if !r.InYear(year) || !MatchesEmployeeAndType(r, e, lt) {
			continue
		}
		used = used.Add(generic.Amount{Value: ResolveLeaveAmount(r).Value, Unit: used.Unit})
	}
	return used.Normalize()
}

// =============================================================================
// LEAVE BALANCE
// =============================================================================

type BalanceStatus string

const (
	BalanceApplicable    BalanceStatus = "applicable"
	BalanceNotApplicable BalanceStatus = "not_applicable"
)

// LeaveBalance is the derived quota view of one leave type for one employee.
//
// A not-applicable balance (the leave type is scoped to another employment
// type) is a distinct state from a zero quota: its Quota, Used and Remaining
// carry no meaning and must not be rendered as numbers.
type LeaveBalance struct {
	LeaveType LeaveType
	Year      int
	Status    BalanceStatus
	Quota     generic.Amount
	Used      generic.Amount
	Remaining generic.Amount
	OverQuota bool
}

func (b LeaveBalance) Applicable() bool { return b.Status == BalanceApplicable }

// ComputeLeaveBalance returns one balance per leave type, in input order.
// remaining = max(0, quota - used); OverQuota = used > quota.
func ComputeLeaveBalance(e Employee, types []LeaveType, records []LeaveRecord, year int) []LeaveBalance {
	owned := RecordsForEmployee(records, e)
	balances := make([]LeaveBalance, 0, len(types))
	for _, lt := range types {
		balances = append(balances, balanceFor(e, lt, owned, year))
	}
	return balances
}

func balanceFor(e Employee, lt LeaveType, records []LeaveRecord, year int) LeaveBalance {
	unit := lt.AccountingUnit()
	if !lt.AppliesTo(e) {
		return LeaveBalance{
			LeaveType: lt,
			Year:      year,
			Status:    BalanceNotApplicable,
			Quota:     generic.ZeroAmount(unit),
			Used:      generic.ZeroAmount(unit),
			Remaining: generic.ZeroAmount(unit),
		}
	}

	quota := lt.QuotaAmount()
	used := ComputeConsumptionInYear(records, e, lt, year)
	return LeaveBalance{
		LeaveType: lt,
		Year:      year,
		Status:    BalanceApplicable,
		Quota:     quota,
		Used:      used,
		Remaining: quota.Sub(used).ClampZero().Normalize(),
		OverQuota: used.GreaterThan(quota),
	}
}

// EligibleLeaveTypes returns the leave types scoped to the employee's
// employment type.
func EligibleLeaveTypes(e Employee, types []LeaveType) []LeaveType {
	var out []LeaveType
	for _, lt := range types {
		if lt.AppliesTo(e) {
			out = append(out, lt)
		}
	}
	return out
}
