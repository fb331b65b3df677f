package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gstbilling-backend/billing"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees"},
		{"0.50", "Fifty Paise"},
		{"7", "Seven Rupees"},
		{"19", "Nineteen Rupees"},
		{"40", "Forty Rupees"},
		{"99.99", "Ninety Nine Rupees and Ninety Nine Paise"},
		{"100", "One Hundred Rupees"},
		{"218", "Two Hundred and Eighteen Rupees"},
		{"1000", "One Thousand Rupees"},
		{"1328", "One Thousand Three Hundred and Twenty Eight Rupees"},
		{"100000", "One Lakh Rupees"},
		{"123456.50", "One Lakh Twenty Three Thousand Four Hundred and Fifty Six Rupees and Fifty Paise"},
		{"2500000", "Twenty Five Lakh Rupees"},
		{"10000000", "One Crore Rupees"},
		{"10100001", "One Crore One Lakh One Rupees"},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.want, billing.AmountInWords(dec(tc.amount)))
		})
	}
}

func TestAmountInWordsPaiseCarry(t *testing.T) {
	// Paise rounding can spill into the next rupee.
	assert.Equal(t, "Two Rupees", billing.AmountInWords(dec("1.999")))
}
