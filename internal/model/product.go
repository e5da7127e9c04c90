package model

import (
	"autoparts-inventory/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	SKU        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Stock      int             `gorm:"default:0" json:"stock" validate:"gte=0"`
	Unit       string          `gorm:"type:varchar(20)" json:"unit"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price" validate:"gte=0"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category       `json:"category,omitempty" validate:"-"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty" validate:"-"`
	UpdatedByUser   *User   `gorm:"foreignKey:UpdatedByUserID;references:ID" json:"updated_by_user,omitempty" validate:"-"`
}

// Snapshot converts the product to the catalog entry used by the ledger
func (p *Product) Snapshot() ledger.Product {
	return ledger.Product{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.Stock,
		CategoryID:    p.CategoryID,
	}
}

// Catalog converts products to a ledger catalog, keeping their order
func Catalog(products []Product) []ledger.Product {
	catalog := make([]ledger.Product, len(products))
	for i := range products {
		catalog[i] = products[i].Snapshot()
	}
	return catalog
}
