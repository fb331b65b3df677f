package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// AmountInWords renders a non-negative amount as the legally required
// amount-in-words line, using the Indian grouping (Hundred, Thousand,
// Lakh = 10^5, Crore = 10^7), e.g.
//
//	123456.50 -> "One Lakh Twenty Three Thousand Four Hundred and Fifty Six Rupees and Fifty Paise"
//
// Zero rupee and zero paise parts are omitted; an amount of exactly zero
// renders as "Zero Rupees". Callers must not pass negative amounts.
func AmountInWords(amount decimal.Decimal) string {
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(oneHundred).Round(0).IntPart()
	if paise >= 100 {
		// 0.999 rounds up into the next rupee.
		rupees += paise / 100
		paise %= 100
	}

	var parts []string
	if rupees > 0 {
		parts = append(parts, numberWords(rupees)+" Rupees")
	}
	if paise > 0 {
		parts = append(parts, numberWords(paise)+" Paise")
	}
	if len(parts) == 0 {
		return "Zero Rupees"
	}
	return strings.Join(parts, " and ")
}

// numberWords spells out n > 0 by peeling off the highest denomination.
// "and" joins only a hundreds group with its remainder.
func numberWords(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + " " + onesWords[n%10]
	case n < 1000:
		if n%100 == 0 {
			return onesWords[n/100] + " Hundred"
		}
		return onesWords[n/100] + " Hundred and " + numberWords(n%100)
	case n < 100000:
		if n%1000 == 0 {
			return numberWords(n/1000) + " Thousand"
		}
		return numberWords(n/1000) + " Thousand " + numberWords(n%1000)
	case n < 10000000:
		if n%100000 == 0 {
			return numberWords(n/100000) + " Lakh"
		}
		return numberWords(n/100000) + " Lakh " + numberWords(n%100000)
	default:
		if n%10000000 == 0 {
			return numberWords(n/10000000) + " Crore"
		}
		return numberWords(n/10000000) + " Crore " + numberWords(n%10000000)
	}
}
