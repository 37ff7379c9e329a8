package calculator

import "github.com/shopspring/decimal"

// Audit compares an allocation against the total it was computed from.
type Audit struct {
	Total     decimal.Decimal
	Allocated decimal.Decimal // Sum of every participant's share
	Drift     decimal.Decimal // Allocated - Total; negative when shares fall short
}

// Balanced reports whether the shares add up to the total exactly.
func (a Audit) Balanced() bool {
	return a.Drift.IsZero()
}

// AuditAllocation sums the allocation and reports its drift from total.
//
// In equal mode the drift is the rounding error of giving every participant
// the same rounded share, bounded by (selected-1) cents. In custom mode it is
// whatever the entered amounts leave unaccounted for.
func AuditAllocation(total decimal.Decimal, owed map[string]decimal.Decimal) Audit {
	allocated := decimal.Zero
	for _, amount := range owed {
		allocated = allocated.Add(amount)
	}
	return Audit{
		Total:     total,
		Allocated: allocated,
		Drift:     allocated.Sub(total),
	}
}
