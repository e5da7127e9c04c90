package model

import (
	"autoparts-inventory/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPurchase TransactionType = "PURCHASE"
	TxSale     TransactionType = "SALE"
)

// DocumentType maps the transaction type to the ledger document type
func (t TransactionType) DocumentType() ledger.DocumentType {
	return ledger.DocumentType(t)
}

// ContactType returns the kind of contact a document of this type is issued to
func (t TransactionType) ContactType() ContactType {
	if t == TxSale {
		return ContactCustomer
	}
	return ContactVendor
}

// Transaction is a purchase or sale document. The totals are a snapshot of
// ledger.ComputeTotals at the time the document was saved. Item amounts
// and VAT take two places, so exact totals need six.
type Transaction struct {
	BaseModel
	Number        string            `gorm:"type:varchar(30);uniqueIndex;not null" json:"number"`
	Type          TransactionType   `gorm:"type:varchar(10);not null;index" json:"type" validate:"required,oneof=PURCHASE SALE"`
	ContactID     *uuid.UUID        `gorm:"type:uuid;index" json:"contact_id"`
	Contact       *Contact          `json:"contact,omitempty" validate:"-"`
	VATPercent    decimal.Decimal   `gorm:"type:decimal(5,2);not null;default:0" json:"vat_percent"`
	Items         []TransactionItem `gorm:"constraint:OnDelete:CASCADE" json:"items" validate:"-"`
	TotalGross    decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:0" json:"total_gross"`
	TotalDiscount decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:0" json:"total_discount"`
	TotalVAT      decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:0" json:"total_vat"`
	GrandTotal    decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:0" json:"grand_total"`
	PaymentMethod string            `gorm:"type:varchar(20)" json:"payment_method"` // CASH, TRANSFER, CARD
	Note          string            `json:"note"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty" validate:"-"`
}

type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product        `json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount"`
}

// LineItems returns the items as ledger lines, in document order
func (t *Transaction) LineItems() []ledger.LineItem {
	lines := make([]ledger.LineItem, len(t.Items))
	for i, it := range t.Items {
		lines[i] = ledger.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Discount:  it.Discount,
		}
	}
	return lines
}

// ApplyTotals copies the document-level totals onto the transaction
func (t *Transaction) ApplyTotals(totals ledger.Totals) {
	t.TotalGross = totals.TotalGross
	t.TotalDiscount = totals.TotalDiscount
	t.TotalVAT = totals.TotalVAT
	t.GrandTotal = totals.GrandTotal
}

// StockDelta is the signed stock change the document applies per product
func (t *Transaction) StockDelta() map[uuid.UUID]int {
	sign := 1
	if t.Type == TxSale {
		sign = -1
	}
	delta := make(map[uuid.UUID]int)
	for _, it := range t.Items {
		delta[it.ProductID] += sign * it.Quantity
	}
	return delta
}
