package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePositiveAmount parses a user-entered decimal string and enforces
// 0 < v <= max. Used for strict validation before a document is persisted;
// the billing core itself stays lenient (billing.ParseAmount).
func ParsePositiveAmount(s string, max decimal.Decimal) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("must be greater than zero: %s", v)
	}
	if v.GreaterThan(max) {
		return decimal.Zero, fmt.Errorf("must not exceed %s: %s", max, v)
	}
	return v, nil
}

// ParsePercent parses a percentage in [0,100]. Empty input means 0.
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", s)
	}
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("must be between 0 and 100: %s", v)
	}
	return v, nil
}
