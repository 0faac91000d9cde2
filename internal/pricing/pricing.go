// Package pricing computes per-line and aggregate monetary totals for a
// draft. All math runs on decimals at full precision; rounding for display
// is a presentation concern outside this package.
package pricing

import (
	"cowork-allocator/internal/draft"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotal computes quantity * rate * (1 - discount/100) for one line.
// Inputs are assumed to have passed field-level validation.
func LineTotal(l draft.Line) decimal.Decimal {
	qty := decimal.NewFromInt(int64(l.QuantityBooked))
	factor := decimal.NewFromInt(1).Sub(l.DiscountApplied.Div(hundred))
	return qty.Mul(l.Rate).Mul(factor)
}

// DraftTotal sums LineTotal over all lines. Deterministic and
// order-independent: permuting the lines does not change the result.
func DraftTotal(d *draft.AllocationDraft) decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(LineTotal(l))
	}
	return total
}
