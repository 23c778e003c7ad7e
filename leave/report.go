package leave

import (
	"sort"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// TEAM LEAVE TOTALS
// =============================================================================

// TeamLeaveTotalsRow holds one employee's balance for every leave type,
// including the not-applicable ones so the report keeps a fixed column set.
type TeamLeaveTotalsRow struct {
	Employee Employee
	Balances []LeaveBalance
}

func TeamLeaveTotals(employees []Employee, types []LeaveType, records []LeaveRecord, year int) []TeamLeaveTotalsRow {
	rows := make([]TeamLeaveTotalsRow, 0, len(employees))
	for _, e := range employees {
		rows = append(rows, TeamLeaveTotalsRow{
			Employee: e,
			Balances: ComputeLeaveBalance(e, types, records, year),
		})
	}
	return rows
}

// =============================================================================
// LEAVE HISTORY
// =============================================================================

// HistoryEntry is one of an employee's records with its resolved amount.
type HistoryEntry struct {
	Record        LeaveRecord
	Date          generic.TimePoint
	LeaveTypeName string
	Amount        generic.Amount
	Source        AmountSource
}

// History lists the employee's records oldest first. The leave type name is
// taken from the current leave type when the record's ID still resolves,
// otherwise from the name denormalized on the record.
func History(records []LeaveRecord, e Employee, types []LeaveType) []HistoryEntry {
	owned := RecordsForEmployee(records, e)
	entries := make([]HistoryEntry, 0, len(owned))
	for _, r := range owned {
		amount, source := ExplainLeaveAmount(r)
		name := r.TypeName
		for _, lt := range types {
			if r.LeaveTypeID != "" && generic.NewKeySet(lt.ID).Matches(r.LeaveTypeID) {
				name = lt.Name
				if amount.Unit == "" {
					amount.Unit = lt.AccountingUnit()
				}
				break
			}
		}
		entries = append(entries, HistoryEntry{
			Record:        r,
			Date:          r.AccountingDate(),
			LeaveTypeName: name,
			Amount:        amount,
			Source:        source,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries
}
