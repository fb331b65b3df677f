package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the seller profile printed on every document. State is the
// seller jurisdiction the CGST/SGST vs IGST decision compares against.
type Company struct {
	Id          string `json:"id" gorm:"primaryKey"`
	CompanyName string `json:"company_name" gorm:"not null;unique"`
	Address     string `json:"address" gorm:"not null"`
	City        string `json:"city" gorm:"not null"`
	State       string `json:"state" gorm:"not null"`
	Zip         string `json:"zip" gorm:"not null"`
	GSTIN       string `json:"gstin" gorm:"null"`
	PhoneNumber string `json:"phone_number" gorm:"null"`
	UserId      string `json:"-"`
	User        User   `json:"user" gorm:"foreignKey:UserId;references:Id"`
	SchemaName  string `json:"-"`
}

func (company *Company) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	company.Id = uuid.NewString()
	return
}
