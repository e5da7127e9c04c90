package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrSKUExists            = errors.New("SKU already exists")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryExists       = errors.New("category already exists")
	ErrCategoryInUse        = errors.New("category still has products")
	ErrContactNotFound      = errors.New("contact not found")
	ErrContactTypeMismatch  = errors.New("contact type does not match document type")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTypeImmutable        = errors.New("document type cannot be changed")
	ErrNoItems              = errors.New("document has no line items")
	ErrTooManyDecimals      = fmt.Errorf("amounts take at most %d decimal places", amountPlaces)
	ErrStockWouldGoNegative = errors.New("stock would go negative")
	ErrInvalidRange         = errors.New("invalid range, use 7d, 1m, 3m, 6m or 12m")
)

// amountPlaces is the scale of prices, discounts and VAT percentages
const amountPlaces = 2

// Actor is the authenticated user behind a request
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) event() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}

// Publisher pushes events to connected dashboards. *ws.Hub implements it.
type Publisher interface {
	Publish(event any)
}

// notFound maps gorm.ErrRecordNotFound to target and passes other errors on
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return fmt.Errorf("query: %w", err)
}
