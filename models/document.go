package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document kinds.
const (
	KindInvoice = "invoice"
	KindChallan = "challan"
)

// Document statuses.
const (
	StatusIssued = "issued"
)

// Document is an issued invoice or delivery challan. Once issued it only
// changes through an explicit edit (which recomputes the whole breakdown)
// or an explicit delete; the sequence number is never reassigned and a
// delete never returns the number to the counter.
type Document struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Kind           string    `json:"kind" gorm:"type:VARCHAR(20);not null;index"` // "invoice" | "challan"
	OwnerID        string    `json:"-" gorm:"size:128;not null;index:idx_documents_owner_seq,unique,priority:1"`
	SequenceNumber int64     `json:"sequence_number" gorm:"not null;index:idx_documents_owner_seq,unique,priority:2"`
	Date           time.Time `json:"date"`

	PartyID uint  `json:"party_id"`
	Party   Party `json:"party" gorm:"foreignKey:PartyID;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	// Denormalized at issue time; later directory edits must not alter
	// historical documents.
	PartySnapshot datatypes.JSON `json:"party_snapshot" gorm:"type:jsonb"`

	Items []DocumentItem `json:"items" gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`

	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric(5,2)"`
	TaxRate         int             `json:"tax_rate"`

	// Breakdown, exactly as computed; the renderer consumes these verbatim.
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(12,2)"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount" gorm:"type:numeric(12,2)"`
	CGST           decimal.Decimal `json:"cgst" gorm:"type:numeric(12,2)"`
	SGST           decimal.Decimal `json:"sgst" gorm:"type:numeric(12,2)"`
	IGST           decimal.Decimal `json:"igst" gorm:"type:numeric(12,2)"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(12,2)"`
	RoundedTotal   decimal.Decimal `json:"rounded_total" gorm:"type:numeric(12,2)"`
	RoundOff       decimal.Decimal `json:"round_off" gorm:"type:numeric(12,2)"`

	Status    string    `json:"status" gorm:"type:VARCHAR(20)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (document *Document) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	document.ID = uuid.NewString()
	return
}

// Number is the display form of the sequence number.
func (document *Document) Number() string {
	prefix := "INV"
	if document.Kind == KindChallan {
		prefix = "CH"
	}
	return fmt.Sprintf("%s-%d", prefix, document.SequenceNumber)
}

// DocumentItem is one line of a document, kept in form order via Position.
type DocumentItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	DocumentID string          `json:"-" gorm:"index"`
	Position   int             `json:"position" gorm:"not null"`
	Name       string          `json:"name" gorm:"not null"`
	HSN        string          `json:"hsn" gorm:"size:8"`
	Quantity   decimal.Decimal `json:"quantity" gorm:"type:numeric(9,3)"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"` // quantity x price
}
