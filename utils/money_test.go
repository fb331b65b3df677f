package utils_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling-backend/utils"
)

func TestParsePositiveAmount(t *testing.T) {
	max := decimal.NewFromInt(10000)

	v, err := utils.ParsePositiveAmount(" 12.5 ", max)
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("12.5")))

	_, err = utils.ParsePositiveAmount("0", max)
	assert.Error(t, err)

	_, err = utils.ParsePositiveAmount("-3", max)
	assert.Error(t, err)

	_, err = utils.ParsePositiveAmount("10000.01", max)
	assert.Error(t, err)

	_, err = utils.ParsePositiveAmount("abc", max)
	assert.Error(t, err)
}

func TestParsePercent(t *testing.T) {
	v, err := utils.ParsePercent("")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = utils.ParsePercent("100")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(100)))

	_, err = utils.ParsePercent("100.5")
	assert.Error(t, err)

	_, err = utils.ParsePercent("-1")
	assert.Error(t, err)
}
