package controllers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling-backend/models"
)

func TestBillablePartyRejectsDeactivated(t *testing.T) {
	err := billableParty(&models.Party{Id: 1, Name: "Acme Traders", Active: false})
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusUnprocessableEntity, fe.Code)
}

func TestBillablePartyAcceptsActive(t *testing.T) {
	assert.NoError(t, billableParty(&models.Party{Id: 1, Name: "Acme Traders", Active: true}))
}
