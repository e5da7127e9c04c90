package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrOutOfStock is returned by AddLine on a sale ledger when every
	// catalog product is already fully allocated.
	ErrOutOfStock = errors.New("no product with remaining stock")

	// ErrInsufficientStock is matched by every *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrEmptyCatalog        = errors.New("catalog is empty")
	ErrLineNotFound        = errors.New("line item not found")
	ErrProductNotFound     = errors.New("product not found in catalog")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidVAT          = errors.New("vat percent must be between 0 and 100")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrInvalidField        = errors.New("invalid line field")
)

// InsufficientStockError reports the exact number of units still available
// for a product once the other lines of the ledger are accounted for.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: requested %d, only %d available", ErrInsufficientStock, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
