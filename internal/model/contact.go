package model

type ContactType string

const (
	ContactCustomer ContactType = "CUSTOMER"
	ContactVendor   ContactType = "VENDOR"
)

// Contact is a customer or a vendor
type Contact struct {
	BaseModel
	Type      ContactType `gorm:"type:varchar(10);not null;index" json:"type" validate:"required,oneof=CUSTOMER VENDOR"`
	Name      string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Email     string      `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone     string      `gorm:"type:varchar(30)" json:"phone"`
	Address   string      `gorm:"type:text" json:"address"`
	TaxNumber string      `gorm:"type:varchar(50)" json:"tax_number"`
}
