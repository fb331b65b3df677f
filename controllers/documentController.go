package controllers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gstbilling-backend/billing"
	"gstbilling-backend/database"
	"gstbilling-backend/middlewares"
	"gstbilling-backend/models"
	"gstbilling-backend/sequence"
	"gstbilling-backend/utils"
)

type LineInput struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	HSN      string `json:"hsn" validate:"omitempty,number,min=4,max=8"`
	Quantity string `json:"quantity" validate:"required"`
	Price    string `json:"price" validate:"required"`
}

type DocumentInput struct {
	Kind            string      `json:"kind" validate:"required,oneof=invoice challan"`
	PartyID         uint        `json:"party_id" validate:"required"`
	Date            string      `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DiscountPercent string      `json:"discount_percent"`
	TaxRate         int         `json:"tax_rate" validate:"gstrate"`
	Items           []LineInput `json:"items" validate:"required,min=1,dive"`
}

// DocumentUpdateInput edits everything except the kind and the number.
type DocumentUpdateInput struct {
	PartyID         uint        `json:"party_id" validate:"required"`
	Date            string      `json:"date" validate:"omitempty,datetime=2006-01-02"`
	DiscountPercent string      `json:"discount_percent"`
	TaxRate         int         `json:"tax_rate" validate:"gstrate"`
	Items           []LineInput `json:"items" validate:"required,min=1,dive"`
}

var (
	maxQuantity = decimal.NewFromInt(10000)
	maxPrice    = decimal.NewFromInt(1000000)
)

// validateLines enforces the persistence-time ranges (0 < qty <= 10000,
// 0 < price <= 1,000,000) and returns the lines for the calculator.
// billing.Compute itself never rejects; this is the strict gate in front of it.
func validateLines(items []LineInput) ([]billing.Line, error) {
	lines := make([]billing.Line, 0, len(items))
	for i, it := range items {
		if _, err := utils.ParsePositiveAmount(it.Quantity, maxQuantity); err != nil {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid quantity at index %d: %v", i, err))
		}
		if _, err := utils.ParsePositiveAmount(it.Price, maxPrice); err != nil {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid price at index %d: %v", i, err))
		}
		lines = append(lines, billing.Line{
			Name:     strings.TrimSpace(it.Name),
			HSN:      strings.TrimSpace(it.HSN),
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return lines, nil
}

func parseDiscount(s string) (decimal.Decimal, error) {
	discount, err := utils.ParsePercent(s)
	if err != nil {
		return decimal.Zero, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid discount: "+err.Error())
	}
	return discount, nil
}

func parseDate(s string) time.Time {
	if d, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return d
	}
	return time.Now()
}

// billableParty rejects deactivated parties for new or re-pointed documents.
// Existing documents keep rendering from their snapshot either way.
func billableParty(p *models.Party) error {
	if !p.Active {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "party is deactivated")
	}
	return nil
}

// sellerCompany loads the seller profile from the public schema.
func sellerCompany(ownerID string) (*models.Company, error) {
	var company models.Company
	if err := database.DB.Where("user_id = ?", ownerID).First(&company).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "seller profile missing")
	}
	return &company, nil
}

// assembleDocument merges the computed breakdown, the allocated number and a
// snapshot of the party into the record that gets persisted. The snapshot is
// taken here so later edits to the party directory never rewrite history.
func assembleDocument(kind, ownerID string, number int64, date time.Time, party *models.Party, lines []billing.Line, taxRate int, b billing.Breakdown) (*models.Document, error) {
	snapshot, err := json.Marshal(party)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Kind:            kind,
		OwnerID:         ownerID,
		SequenceNumber:  number,
		Date:            date,
		PartyID:         party.Id,
		PartySnapshot:   datatypes.JSON(snapshot),
		Items:           buildItems("", lines),
		DiscountPercent: b.DiscountPercent,
		TaxRate:         taxRate,
		Subtotal:        b.Subtotal,
		DiscountAmount:  b.DiscountAmount,
		TaxableAmount:   b.TaxableAmount,
		CGST:            b.CGST,
		SGST:            b.SGST,
		IGST:            b.IGST,
		Total:           b.Total,
		RoundedTotal:    b.RoundedTotal,
		RoundOff:        b.RoundOff,
		Status:          models.StatusIssued,
	}, nil
}

func buildItems(documentID string, lines []billing.Line) []models.DocumentItem {
	items := make([]models.DocumentItem, 0, len(lines))
	for i, l := range lines {
		qty := billing.ParseAmount(l.Quantity)
		price := billing.ParseAmount(l.Price)
		items = append(items, models.DocumentItem{
			DocumentID: documentID,
			Position:   i,
			Name:       l.Name,
			HSN:        l.HSN,
			Quantity:   qty,
			Price:      price,
			Amount:     qty.Mul(price).Round(2),
		})
	}
	return items
}

func CreateDocument(c *fiber.Ctx) error {
	var input DocumentInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	lines, err := validateLines(input.Items)
	if err != nil {
		return err
	}
	discount, err := parseDiscount(input.DiscountPercent)
	if err != nil {
		return err
	}

	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var party models.Party
	if err := db.First(&party, input.PartyID).Error; err != nil {
		return err
	}
	if err := billableParty(&party); err != nil {
		return err
	}
	company, err := sellerCompany(ownerID)
	if err != nil {
		return err
	}

	taxRate := input.TaxRate
	if input.Kind == models.KindChallan {
		// Delivery challans carry no GST split.
		taxRate = 0
	}

	breakdown := billing.Compute(lines, discount, decimal.NewFromInt(int64(taxRate)), company.State, party.State)

	// Allocate -> write -> confirm, all inside the request transaction. A
	// failed document write rolls the whole thing back, so no number is ever
	// burnt by a failed create.
	alloc := sequence.NewAllocator(&sequence.GormCounterStore{DB: db}, &sequence.GormDocumentIndex{DB: db})
	number, err := alloc.AllocateNext(ownerID)
	if err != nil {
		return err
	}

	doc, err := assembleDocument(input.Kind, ownerID, number, parseDate(input.Date), &party, lines, taxRate, breakdown)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not assemble document")
	}

	if err := db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := alloc.Confirm(ownerID, number); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func GetDocuments(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 50)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	q := db.Model(&models.Document{}).Where("owner_id = ?", ownerID)
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if partyID := utils.ParseIntDefault(c.Query("party_id"), 0); partyID > 0 {
		q = q.Where("party_id = ?", partyID)
	}

	var documents []models.Document
	if err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Order("sequence_number DESC").Limit(limit).Offset(offset).Find(&documents).Error; err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	return c.JSON(fiber.Map{
		"documents": documents,
		"message":   "success",
	})
}

func GetDocument(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var doc models.Document
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("owner_id = ?", ownerID).First(&doc, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}
	return c.JSON(doc)
}

// UpdateDocument recomputes the whole breakdown from the edited item list.
// The sequence number and creation timestamp are preserved; a number is
// assigned exactly once.
func UpdateDocument(c *fiber.Ctx) error {
	var input DocumentUpdateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	lines, err := validateLines(input.Items)
	if err != nil {
		return err
	}
	discount, err := parseDiscount(input.DiscountPercent)
	if err != nil {
		return err
	}

	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var doc models.Document
	if err := db.Where("owner_id = ?", ownerID).First(&doc, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	var party models.Party
	if err := db.First(&party, input.PartyID).Error; err != nil {
		return err
	}
	if party.Id != doc.PartyID {
		// Re-pointing the document is issuing against a new party.
		if err := billableParty(&party); err != nil {
			return err
		}
	}
	company, err := sellerCompany(ownerID)
	if err != nil {
		return err
	}

	taxRate := input.TaxRate
	if doc.Kind == models.KindChallan {
		taxRate = 0
	}
	breakdown := billing.Compute(lines, discount, decimal.NewFromInt(int64(taxRate)), company.State, party.State)

	snapshot, err := json.Marshal(&party)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not snapshot party")
	}

	// Replace the item rows wholesale; the edited form is the new truth.
	if err := db.Where("document_id = ?", doc.ID).Delete(&models.DocumentItem{}).Error; err != nil {
		return fmt.Errorf("replace items: %w", err)
	}
	items := buildItems(doc.ID, lines)
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("replace items: %w", err)
	}

	doc.Date = parseDate(input.Date)
	doc.PartyID = party.Id
	doc.PartySnapshot = datatypes.JSON(snapshot)
	doc.DiscountPercent = breakdown.DiscountPercent
	doc.TaxRate = taxRate
	doc.Subtotal = breakdown.Subtotal
	doc.DiscountAmount = breakdown.DiscountAmount
	doc.TaxableAmount = breakdown.TaxableAmount
	doc.CGST = breakdown.CGST
	doc.SGST = breakdown.SGST
	doc.IGST = breakdown.IGST
	doc.Total = breakdown.Total
	doc.RoundedTotal = breakdown.RoundedTotal
	doc.RoundOff = breakdown.RoundOff

	if err := db.Omit(clause.Associations).Save(&doc).Error; err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	doc.Items = items
	return c.JSON(&doc)
}

// DeleteDocument removes a document. The sequence counter stays untouched:
// issued numbers are never reused.
func DeleteDocument(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	res := db.Where("owner_id = ? AND id = ?", ownerID, c.Params("id")).Delete(&models.Document{})
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return c.JSON(fiber.Map{"message": "success"})
}

// RenderDocument returns everything the external renderer (PDF/print/share)
// needs, values passed through verbatim so the renderer never recomputes.
func RenderDocument(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("userID").(string)
	db, err := database.GetTenantDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "tenant database unavailable")
	}

	var doc models.Document
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("owner_id = ?", ownerID).First(&doc, "id = ?", c.Params("id")).Error; err != nil {
		return err
	}

	company, err := sellerCompany(ownerID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"number":          doc.Number(),
		"document":        doc,
		"seller":          company,
		"amount_in_words": billing.AmountInWords(doc.RoundedTotal),
	})
}
