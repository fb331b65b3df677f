package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"gstbilling-backend/database"
	"gstbilling-backend/middlewares"
	"gstbilling-backend/models"
	"gstbilling-backend/utils"
)

type PartyInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	GSTIN       string `json:"gstin" validate:"omitempty,len=15"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// PartyPatch updates only the fields the client sent; nil pointers stay
// untouched so GORM won't overwrite them.
type PartyPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Zip         *string `json:"zip"`
	GSTIN       *string `json:"gstin" validate:"omitempty,len=15"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

func CreateParty(c *fiber.Ctx) error {
	var input PartyInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	party := models.Party{
		Name:        input.Name,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		Zip:         input.Zip,
		GSTIN:       input.GSTIN,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Active:      true,
	}
	if err := db.Create(&party).Error; err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return c.Status(fiber.StatusCreated).JSON(party)
}

func GetParties(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var parties []models.Party
	if err := db.Where("active = ?", true).Order("name ASC").
		Limit(limit).Offset(offset).Find(&parties).Error; err != nil {
		return fmt.Errorf("list parties: %w", err)
	}
	return c.JSON(fiber.Map{
		"parties": parties,
		"message": "success",
	})
}

func GetParty(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var party models.Party
	if err := db.First(&party, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(party)
}

// UpdateParty patches the directory entry. Documents keep their own
// snapshot, so this never changes an already issued document.
func UpdateParty(c *fiber.Ctx) error {
	var patch PartyPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&patch)

	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var party models.Party
	if err := db.First(&party, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&patch, nil)
	if len(updates) == 0 {
		return c.JSON(party)
	}
	if err := db.Model(&party).Updates(updates).Error; err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	return c.JSON(party)
}

// DeleteParty deactivates a party instead of removing the row; historical
// documents still reference it.
func DeleteParty(c *fiber.Ctx) error {
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	res := db.Model(&models.Party{}).Where("id = ?", c.Params("id")).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate party: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return c.JSON(fiber.Map{"message": "success"})
}
