package models

import "time"

// SequenceCounter holds the last issued document number per owner. It is
// advanced only after the document carrying the number was written, and it
// is never decremented: deleting a document does not free its number.
type SequenceCounter struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OwnerID          string    `json:"owner_id" gorm:"size:128;uniqueIndex;not null"`
	LastIssuedNumber int64     `json:"last_issued_number" gorm:"not null;default:0"`
	UpdatedAt        time.Time `json:"updated_at"`
}
