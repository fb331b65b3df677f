package controllers

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gstbilling-backend/database"
	"gstbilling-backend/middlewares"
	"gstbilling-backend/models"
)

func Register(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	var mailExist models.User
	database.DB.Where("email = ?", data["email"]).First(&mailExist)
	if mailExist.Email != "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "email already exists",
		})
	}

	if data["password"] != data["password_confirm"] {
		c.Status(400)
		return c.JSON(fiber.Map{
			"message": "passwords do not match",
		})
	}

	if strings.TrimSpace(data["state"]) == "" {
		c.Status(400)
		return c.JSON(fiber.Map{
			"message": "seller state is required",
		})
	}

	tx := database.DB.Begin()

	user := models.User{
		FirstName: data["first_name"],
		LastName:  data["last_name"],
		Email:     data["email"],
	}
	user.SetPassword(data["password"])
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create User",
			"error":   err.Error(),
		})
	}

	company := models.Company{
		CompanyName: data["company_name"],
		Address:     data["address"],
		City:        data["city"],
		State:       strings.TrimSpace(data["state"]),
		Zip:         data["zip"],
		GSTIN:       data["gstin"],
		PhoneNumber: data["phone_number"],
		UserId:      user.Id,
	}

	schemaName, err := createSchema(company.CompanyName)
	if err != nil {
		tx.Rollback()
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"message": "Registration failed due to internal error",
			"error":   err.Error(),
		})
	}
	company.SchemaName = schemaName

	if err := tx.Create(&company).Error; err != nil {
		tx.Rollback()
		dropSchema(schemaName)
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create company",
			"error":   err.Error(),
		})
	}

	user.SchemaName = schemaName
	if err := tx.Updates(&user).Error; err != nil {
		tx.Rollback()
		dropSchema(schemaName)
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Registration failed",
			"error":   err.Error(),
		})
	}

	if err := finalizeRegistration(tx, schemaName, database.MigrateTenantSchema, dropSchema); err != nil {
		return err
	}

	database.DB.Preload("User").First(&company, "id = ?", company.Id)
	return c.JSON(company)
}

// registrationTx is the subset of *gorm.DB that finalizeRegistration needs.
type registrationTx interface {
	Rollback() *gorm.DB
	Commit() *gorm.DB
}

// finalizeRegistration runs the tenant migration before committing the
// registration transaction. A failed migration rolls everything back and
// drops the freshly created schema, so a failed registration leaves nothing
// behind.
func finalizeRegistration(tx registrationTx, schemaName string, migrate func(string) error, drop func(string)) error {
	if err := migrate(schemaName); err != nil {
		tx.Rollback()
		drop(schemaName)
		return fiber.NewError(fiber.StatusInternalServerError, "Could not migrate tenant schema")
	}
	tx.Commit()
	return nil
}

func createSchema(customer string) (string, error) {
	safeName := strings.ToLower(strings.TrimSpace(customer))
	safeName = strings.ReplaceAll(safeName, " ", "_")
	// Validate schema name (only letters, numbers, underscores; must start with letter/underscore)
	valid := regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	if !valid.MatchString(safeName) {
		return "", fmt.Errorf("invalid schema name after sanitization: %s", safeName)
	}

	// A pre-existing schema belongs to another tenant; never adopt it.
	var count int64
	if err := database.DB.Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", safeName).Scan(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", fmt.Errorf("schema %s already exists", safeName)
	}

	if err := database.DB.Exec("CREATE SCHEMA " + safeName).Error; err != nil {
		return "", err
	}
	return safeName, nil
}

// dropSchema undoes createSchema when a later registration step fails.
func dropSchema(name string) {
	database.DB.Exec("DROP SCHEMA IF EXISTS " + name + " CASCADE")
}

func Login(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return err
	}

	var user models.User

	if _, err := mail.ParseAddress(data["email"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid email format",
		})
	}

	database.DB.Table("public.users").Where("email = ?", data["email"]).First(&user)

	if _, err := uuid.Parse(user.Id); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	if err := user.ComparePassword(data["password"]); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.SchemaName)
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
			"error":   err.Error(),
		})
	}

	err = database.MigrateTenantSchema(user.SchemaName)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": "Could not migrate tenant schema"})
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"schema": user.SchemaName,
		"user": fiber.Map{
			"id":    user.Id,
			"name":  user.FirstName + " " + user.LastName,
			"email": user.Email,
		},
	})
}

func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
