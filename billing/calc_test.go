package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling-backend/billing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleItems() []billing.Line {
	return []billing.Line{
		{Name: "Cement Bag", HSN: "2523", Quantity: "2", Price: "500"},
		{Name: "Sand", Quantity: "1", Price: "250"},
	}
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s = %s, want %s", field, got, want)
}

func TestComputeIntraState(t *testing.T) {
	b := billing.Compute(sampleItems(), dec("10"), dec("18"), "Karnataka", "Karnataka")

	assertDecEqual(t, "1250", b.Subtotal, "subtotal")
	assertDecEqual(t, "125", b.DiscountAmount, "discount amount")
	assertDecEqual(t, "1125", b.TaxableAmount, "taxable amount")
	assertDecEqual(t, "101.25", b.CGST, "cgst")
	assertDecEqual(t, "101.25", b.SGST, "sgst")
	assertDecEqual(t, "0", b.IGST, "igst")
	assertDecEqual(t, "1327.50", b.Total, "total")
	assertDecEqual(t, "1328", b.RoundedTotal, "rounded total")
	assertDecEqual(t, "0.50", b.RoundOff, "round off")
}

func TestComputeInterState(t *testing.T) {
	b := billing.Compute(sampleItems(), dec("10"), dec("18"), "Karnataka", "Maharashtra")

	assertDecEqual(t, "202.50", b.IGST, "igst")
	assertDecEqual(t, "0", b.CGST, "cgst")
	assertDecEqual(t, "0", b.SGST, "sgst")
	assertDecEqual(t, "1327.50", b.Total, "total")
}

func TestComputeUnknownBuyerStateDefaultsIntraState(t *testing.T) {
	b := billing.Compute(sampleItems(), dec("0"), dec("18"), "Karnataka", "")

	assert.True(t, b.IGST.IsZero(), "igst = %s", b.IGST)
	assert.False(t, b.CGST.IsZero(), "cgst should be non-zero")
}

func TestComputeZeroRate(t *testing.T) {
	b := billing.Compute(sampleItems(), dec("10"), dec("0"), "Karnataka", "Maharashtra")

	assert.True(t, b.CGST.IsZero())
	assert.True(t, b.SGST.IsZero())
	assert.True(t, b.IGST.IsZero())
	assertDecEqual(t, "1125", b.Total, "total")
}

func TestComputeUnparsableAmountsDegradeToZero(t *testing.T) {
	items := []billing.Line{
		{Name: "Good", Quantity: "3", Price: "100"},
		{Name: "Half typed", Quantity: "2.", Price: "50"},
		{Name: "Garbage", Quantity: "abc", Price: "xyz"},
	}
	b := billing.Compute(items, dec("0"), dec("0"), "Karnataka", "")

	// Only the first line parses; the rest contribute zero.
	assertDecEqual(t, "300", b.Subtotal, "subtotal")
}

func TestComputeEmptyItems(t *testing.T) {
	b := billing.Compute(nil, dec("10"), dec("18"), "Karnataka", "Karnataka")

	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.RoundedTotal.IsZero())
	assert.True(t, b.RoundOff.IsZero())
}

func TestComputeDeterministic(t *testing.T) {
	first := billing.Compute(sampleItems(), dec("12.5"), dec("28"), "Delhi", "Punjab")
	second := billing.Compute(sampleItems(), dec("12.5"), dec("28"), "Delhi", "Punjab")

	// The live preview and the submit-time computation must agree exactly.
	assert.Equal(t, first, second)
}

func TestComputeInvariants(t *testing.T) {
	cases := []struct {
		name       string
		items      []billing.Line
		discount   string
		rate       string
		buyerState string
	}{
		{"intra zero discount", sampleItems(), "0", "5", "Karnataka"},
		{"intra fractional discount", sampleItems(), "7.5", "12", "Karnataka"},
		{"inter", sampleItems(), "10", "28", "Kerala"},
		{"full discount", sampleItems(), "100", "18", "Karnataka"},
		{"single paisa line", []billing.Line{{Name: "Pin", Quantity: "1", Price: "0.01"}}, "0", "18", "Kerala"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := billing.Compute(tc.items, dec(tc.discount), dec(tc.rate), "Karnataka", tc.buyerState)

			assert.True(t, b.TaxableAmount.Equal(b.Subtotal.Sub(b.DiscountAmount)),
				"taxable %s != subtotal %s - discount %s", b.TaxableAmount, b.Subtotal, b.DiscountAmount)
			assert.True(t, b.Subtotal.GreaterThanOrEqual(b.TaxableAmount))

			tax := b.CGST.Add(b.SGST).Add(b.IGST)
			assert.True(t, b.Total.Equal(b.TaxableAmount.Add(tax)),
				"total %s != taxable %s + tax %s", b.Total, b.TaxableAmount, tax)

			// Exactly one of CGST+SGST and IGST may be non-zero.
			if !b.IGST.IsZero() {
				assert.True(t, b.CGST.IsZero())
				assert.True(t, b.SGST.IsZero())
			}
			assert.True(t, b.CGST.Equal(b.SGST), "cgst %s != sgst %s", b.CGST, b.SGST)

			require.True(t, b.RoundOff.Equal(b.RoundedTotal.Sub(b.Total)),
				"round off %s != rounded %s - total %s", b.RoundOff, b.RoundedTotal, b.Total)
		})
	}
}

func TestValidTaxRate(t *testing.T) {
	for _, rate := range []int{0, 5, 12, 18, 28} {
		assert.True(t, billing.ValidTaxRate(rate), "rate %d", rate)
	}
	for _, rate := range []int{-5, 1, 10, 15, 100} {
		assert.False(t, billing.ValidTaxRate(rate), "rate %d", rate)
	}
}

func TestInterState(t *testing.T) {
	assert.False(t, billing.InterState("Karnataka", "Karnataka"))
	assert.False(t, billing.InterState("Karnataka", "  karnataka "))
	assert.False(t, billing.InterState("Karnataka", ""))
	assert.True(t, billing.InterState("Karnataka", "Maharashtra"))
}
