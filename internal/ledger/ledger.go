// Package ledger holds the working set of line items for one purchase or
// sale document and derives its monetary totals.
//
// The ledger never stores the product catalog. Every operation that needs
// stock or price information takes the caller's current snapshot, so a
// refreshed catalog only takes effect on the next call.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	Purchase DocumentType = "PURCHASE"
	Sale     DocumentType = "SALE"
)

// IsValid checks if the type is a known DocumentType
func (t DocumentType) IsValid() bool {
	return t == Purchase || t == Sale
}

// Product is the read-only view of a catalog entry the ledger works with.
type Product struct {
	ID            uuid.UUID
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    *uuid.UUID
}

type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
}

type ChangeKind string

const (
	LineAdded   ChangeKind = "line_added"
	LineUpdated ChangeKind = "line_updated"
	LineRemoved ChangeKind = "line_removed"
	VATChanged  ChangeKind = "vat_changed"
)

// Change describes a mutation that has already been applied.
type Change struct {
	Kind  ChangeKind
	Index int
	Line  LineItem
}

type Option func(*Ledger)

// WithChangeHook registers fn to be called after every successful mutation.
// Failed operations never reach the hook.
func WithChangeHook(fn func(Change)) Option {
	return func(l *Ledger) {
		l.onChange = fn
	}
}

type Ledger struct {
	docType    DocumentType
	vatPercent decimal.Decimal
	lines      []LineItem
	onChange   func(Change)
}

var hundred = decimal.NewFromInt(100)

// New creates an empty ledger for a new document.
func New(docType DocumentType, vatPercent decimal.Decimal, opts ...Option) (*Ledger, error) {
	if !docType.IsValid() {
		return nil, ErrInvalidDocumentType
	}
	if err := checkVAT(vatPercent); err != nil {
		return nil, err
	}

	l := &Ledger{
		docType:    docType,
		vatPercent: vatPercent,
		lines:      make([]LineItem, 0),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Seed creates a ledger holding the items of an existing document. The
// items were admitted when the document was saved, so no stock check runs.
func Seed(docType DocumentType, vatPercent decimal.Decimal, items []LineItem, opts ...Option) (*Ledger, error) {
	l, err := New(docType, vatPercent, opts...)
	if err != nil {
		return nil, err
	}
	l.lines = append(l.lines, items...)
	return l, nil
}

func (l *Ledger) Type() DocumentType { return l.docType }

func (l *Ledger) VATPercent() decimal.Decimal { return l.vatPercent }

func (l *Ledger) Len() int { return len(l.lines) }

// Lines returns a copy of the current line items in order.
func (l *Ledger) Lines() []LineItem {
	out := make([]LineItem, len(l.lines))
	copy(out, l.lines)
	return out
}

// Line returns the line at index.
func (l *Ledger) Line(index int) (LineItem, error) {
	if index < 0 || index >= len(l.lines) {
		return LineItem{}, ErrLineNotFound
	}
	return l.lines[index], nil
}

func (l *Ledger) SetVATPercent(vatPercent decimal.Decimal) error {
	if err := checkVAT(vatPercent); err != nil {
		return err
	}
	l.vatPercent = vatPercent
	l.notify(Change{Kind: VATChanged, Index: -1})
	return nil
}

// Totals computes the totals of the current lines.
func (l *Ledger) Totals() Totals {
	return ComputeTotals(l.lines, l.vatPercent)
}

// AddLine appends a default line. Purchases take the first catalog product;
// sales take the first product that still has unallocated stock.
func (l *Ledger) AddLine(catalog []Product) (LineItem, error) {
	if len(catalog) == 0 {
		return LineItem{}, ErrEmptyCatalog
	}

	chosen := catalog[0]
	if l.docType == Sale {
		found := false
		for _, p := range catalog {
			if p.StockQuantity > Allocated(l.lines, p.ID, -1) {
				chosen = p
				found = true
				break
			}
		}
		if !found {
			return LineItem{}, ErrOutOfStock
		}
	}

	line := LineItem{
		ProductID: chosen.ID,
		Quantity:  1,
		Price:     chosen.Price,
		Discount:  decimal.Zero,
	}
	l.lines = append(l.lines, line)
	l.notify(Change{Kind: LineAdded, Index: len(l.lines) - 1, Line: line})
	return line, nil
}

// Append admits a fully specified line. On a sale ledger the quantity must
// fit in what is left of the product's stock after the existing lines.
func (l *Ledger) Append(catalog []Product, item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	product, ok := find(catalog, item.ProductID)
	if !ok {
		return ErrProductNotFound
	}
	if l.docType == Sale {
		available := product.StockQuantity - Allocated(l.lines, product.ID, -1)
		if item.Quantity > available {
			return &InsufficientStockError{ProductID: product.ID, Requested: item.Quantity, Available: available}
		}
	}

	l.lines = append(l.lines, item)
	l.notify(Change{Kind: LineAdded, Index: len(l.lines) - 1, Line: item})
	return nil
}

type Field string

const (
	FieldQuantity  Field = "quantity"
	FieldPrice     Field = "price"
	FieldDiscount  Field = "discount"
	FieldProductID Field = "product_id"
)

// Update carries the new value of a single field. Only the member matching
// Field is read.
type Update struct {
	Field     Field
	Quantity  int
	Amount    decimal.Decimal
	ProductID uuid.UUID
}

// UpdateLine changes one field of the line at index.
func (l *Ledger) UpdateLine(catalog []Product, index int, u Update) error {
	switch u.Field {
	case FieldQuantity:
		return l.SetQuantity(catalog, index, u.Quantity)
	case FieldPrice:
		return l.SetPrice(index, u.Amount)
	case FieldDiscount:
		return l.SetDiscount(index, u.Amount)
	case FieldProductID:
		return l.SetProduct(catalog, index, u.ProductID)
	}
	return ErrInvalidField
}

func (l *Ledger) SetQuantity(catalog []Product, index int, quantity int) error {
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	line := l.lines[index]
	if l.docType == Sale {
		product, ok := find(catalog, line.ProductID)
		if !ok {
			return ErrProductNotFound
		}
		available := product.StockQuantity - Allocated(l.lines, line.ProductID, index)
		if quantity > available {
			return &InsufficientStockError{ProductID: product.ID, Requested: quantity, Available: available}
		}
	}

	l.lines[index].Quantity = quantity
	l.notify(Change{Kind: LineUpdated, Index: index, Line: l.lines[index]})
	return nil
}

func (l *Ledger) SetPrice(index int, price decimal.Decimal) error {
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}
	l.lines[index].Price = price
	l.notify(Change{Kind: LineUpdated, Index: index, Line: l.lines[index]})
	return nil
}

func (l *Ledger) SetDiscount(index int, discount decimal.Decimal) error {
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}
	l.lines[index].Discount = discount
	l.notify(Change{Kind: LineUpdated, Index: index, Line: l.lines[index]})
	return nil
}

// SetProduct points the line at another product and resets quantity to 1
// and discount to 0. Sales also take the new product's price; purchases
// keep the cost already entered.
func (l *Ledger) SetProduct(catalog []Product, index int, productID uuid.UUID) error {
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}
	product, ok := find(catalog, productID)
	if !ok {
		return ErrProductNotFound
	}

	line := l.lines[index]
	if l.docType == Sale {
		available := product.StockQuantity - Allocated(l.lines, productID, index)
		if available < 1 {
			return &InsufficientStockError{ProductID: productID, Requested: 1, Available: available}
		}
		line.Price = product.Price
	}
	line.ProductID = productID
	line.Quantity = 1
	line.Discount = decimal.Zero

	l.lines[index] = line
	l.notify(Change{Kind: LineUpdated, Index: index, Line: line})
	return nil
}

// RemoveLine drops the line at index. Its allocation is released for later
// calls since allocation is always recomputed from the live lines.
func (l *Ledger) RemoveLine(index int) error {
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}
	removed := l.lines[index]
	l.lines = append(l.lines[:index], l.lines[index+1:]...)
	l.notify(Change{Kind: LineRemoved, Index: index, Line: removed})
	return nil
}

// Allocated sums the quantity of lines referencing productID, skipping the
// line at excludeIndex. Pass -1 to count every line.
func Allocated(lines []LineItem, productID uuid.UUID, excludeIndex int) int {
	total := 0
	for i, line := range lines {
		if i == excludeIndex {
			continue
		}
		if line.ProductID == productID {
			total += line.Quantity
		}
	}
	return total
}

func (l *Ledger) notify(c Change) {
	if l.onChange != nil {
		l.onChange(c)
	}
}

func find(catalog []Product, id uuid.UUID) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func checkVAT(v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundred) {
		return ErrInvalidVAT
	}
	return nil
}
