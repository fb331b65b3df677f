package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered numeric string into a decimal.
// Anything unparsable, including empty input, degrades to zero: the billing
// form recomputes on every keystroke and a half-typed quantity must not
// abort the computation. Strict range validation happens separately, before
// a document is persisted.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
