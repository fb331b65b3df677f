package middlewares_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gstbilling-backend/middlewares"
)

type rateDTO struct {
	TaxRate int `json:"tax_rate" validate:"gstrate"`
}

func TestGSTRateValidation(t *testing.T) {
	for _, rate := range []int{0, 5, 12, 18, 28} {
		assert.NoError(t, middlewares.ValidateStruct(rateDTO{TaxRate: rate}), "rate %d", rate)
	}
	for _, rate := range []int{1, 7, 20, -5, 100} {
		assert.Error(t, middlewares.ValidateStruct(rateDTO{TaxRate: rate}), "rate %d", rate)
	}
}
