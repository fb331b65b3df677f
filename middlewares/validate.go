package middlewares

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"gstbilling-backend/billing"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// gstrate delegates to the billing slab list so the DTO gate and the
	// calculator share one source of truth.
	_ = v.RegisterValidation("gstrate", func(fl validator.FieldLevel) bool {
		return billing.ValidTaxRate(int(fl.Field().Int()))
	})
	return v
}

// BindAndValidate parses the request body into dst and validates it.
// Returns fiber.ErrBadRequest for parse errors and a validator.ValidationErrors for validation issues.
func BindAndValidate(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	// NOTE: For slices/arrays, call ValidateStruct per-element in the controller.
	return validate.Struct(dst)
}

// ValidateStruct validates any struct value using the shared validator instance.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}
