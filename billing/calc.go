// Package billing holds the pure computation core of the system: the GST
// breakdown of a document, the amount-in-words formatter and the lenient
// numeric normalization shared by both. Nothing in this package touches the
// database or the request context, so the live preview and the submit-time
// computation go through the exact same code path.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxRates are the GST slabs a document may carry (percent).
var TaxRates = []int{0, 5, 12, 18, 28}

// ValidTaxRate reports whether rate is one of the allowed GST slabs.
func ValidTaxRate(rate int) bool {
	for _, r := range TaxRates {
		if r == rate {
			return true
		}
	}
	return false
}

// Line is one billable row as captured from the client form. Quantity and
// Price arrive as strings and go through ParseAmount, so a half-typed value
// contributes zero instead of aborting the whole computation.
type Line struct {
	Name     string `json:"name"`
	HSN      string `json:"hsn"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// Breakdown is the fully itemized monetary result of a document.
// Invariants: TaxableAmount = Subtotal - DiscountAmount; exactly one of
// CGST+SGST and IGST is non-zero when the rate is non-zero;
// RoundedTotal - Total = RoundOff exactly.
type Breakdown struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	Total           decimal.Decimal `json:"total"`
	RoundedTotal    decimal.Decimal `json:"rounded_total"`
	RoundOff        decimal.Decimal `json:"round_off"`
}

var (
	oneHundred = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// Compute derives the full breakdown for a document. It is a pure function
// of its inputs and never fails: unparsable quantities and prices degrade to
// zero (see ParseAmount), and an unknown buyer state falls back to the
// intra-state CGST/SGST split. Range validation of discountPercent and
// taxRate is the caller's job; Compute trusts its input contract.
func Compute(items []Line, discountPercent, taxRate decimal.Decimal, sellerState, buyerState string) Breakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(ParseAmount(it.Quantity).Mul(ParseAmount(it.Price)))
	}
	subtotal = subtotal.Round(2)

	discountAmount := subtotal.Mul(discountPercent).Div(oneHundred).Round(2)
	taxable := subtotal.Sub(discountAmount)

	var cgst, sgst, igst decimal.Decimal
	if InterState(sellerState, buyerState) {
		igst = taxable.Mul(taxRate).Div(oneHundred).Round(2)
		cgst, sgst = decimal.Zero, decimal.Zero
	} else {
		half := taxable.Mul(taxRate).Div(twoHundred).Round(2)
		cgst, sgst = half, half
		igst = decimal.Zero
	}

	total := taxable.Add(cgst).Add(sgst).Add(igst)
	// Half-up to the whole rupee; Round is half-away-from-zero, which is the
	// same thing on the non-negative domain.
	rounded := total.Round(0)

	return Breakdown{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TaxableAmount:   taxable,
		CGST:            cgst,
		SGST:            sgst,
		IGST:            igst,
		Total:           total,
		RoundedTotal:    rounded,
		RoundOff:        rounded.Sub(total),
	}
}

// InterState reports whether the buyer sits in a different state than the
// seller. A missing buyer state counts as intra-state rather than failing.
func InterState(sellerState, buyerState string) bool {
	buyer := strings.TrimSpace(buyerState)
	if buyer == "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(sellerState), buyer)
}
