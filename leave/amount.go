package leave

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE AMOUNT RESOLVER
// =============================================================================

// AmountSource tells which branch of the resolver produced a record's amount.
type AmountSource string

const (
	SourceDays           AmountSource = "days"            // sum of counting day entries
	SourceRecordFallback AmountSource = "record_fallback" // days summed to <= 0, record amount used
	SourceRecordAmount   AmountSource = "record_amount"   // no day entries, record amount used
	SourceDefault        AmountSource = "default"         // no usable quantity, counted as 1
)

// ResolveLeaveAmount returns the quota-consuming quantity of one record,
// normalized and in the record's unit. It never fails and never returns a
// negative value; malformed quantities degrade to 1, not 0.
func ResolveLeaveAmount(r LeaveRecord) generic.Amount {
	amount, _ := ExplainLeaveAmount(r)
	return amount
}

// ExplainLeaveAmount is ResolveLeaveAmount plus the branch that produced it.
func ExplainLeaveAmount(r LeaveRecord) (generic.Amount, AmountSource) {
	value, source := resolve(r)
	return generic.Amount{Value: value, Unit: r.Unit}, source
}

func resolve(r LeaveRecord) (decimal.Decimal, AmountSource) {
	recordAmount, hasRecordAmount := positiveFinite(r.Amount)

	if len(r.Days) == 0 {
		if hasRecordAmount {
			return generic.NormalizeFloat(recordAmount), SourceRecordAmount
		}
		return generic.One(), SourceDefault
	}

	total := decimal.Zero
	for _, d := range r.Days {
		if !d.CountsTowardQuota.Counts() {
			continue
		}
		if d.Amount != nil && generic.IsFinite(*d.Amount) {
			total = total.Add(decimal.NewFromFloat(*d.Amount))
		} else {
			total = total.Add(generic.One())
		}
	}
	total = generic.Normalize(total)

	if !total.IsPositive() {
		if hasRecordAmount {
			return generic.NormalizeFloat(recordAmount), SourceRecordFallback
		}
		return decimal.Zero, SourceDays
	}
	return total, SourceDays
}

func positiveFinite(f *float64) (float64, bool) {
	if f == nil || !generic.IsFinite(*f) || *f <= 0 {
		return 0, false
	}
	return *f, true
}
