package models

// Party is a buyer in the tenant's directory. Only State and the display
// fields matter to the billing core; documents keep their own snapshot of
// the party, so editing the directory never rewrites history.
type Party struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zip         string `json:"zip"`
	GSTIN       string `json:"gstin"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Active      bool   `json:"-" gorm:"default:true"`
}
