package service

import (
	"fmt"
	"sort"
	"time"

	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionService interface {
	GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error)
	GetTransaction(id uuid.UUID) (*model.Transaction, error)
	PreviewTransaction(req *TransactionRequest, replacing *uuid.UUID) (*TransactionPreview, error)
	EditLines(req *LineEditRequest) (*TransactionPreview, error)
	CreateTransaction(req *TransactionRequest, actor Actor) (*model.Transaction, error)
	UpdateTransaction(id uuid.UUID, req *TransactionRequest, actor Actor) (*model.Transaction, error)
	DeleteTransaction(id uuid.UUID, actor Actor) error
}

type TransactionRequest struct {
	Type          model.TransactionType `json:"type" validate:"required,oneof=PURCHASE SALE"`
	ContactID     *uuid.UUID            `json:"contact_id"`
	VATPercent    *decimal.Decimal      `json:"vat_percent"` // nil takes the configured default
	Items         []ledger.LineItem     `json:"items"`
	PaymentMethod string                `json:"payment_method" validate:"omitempty,oneof=CASH TRANSFER CARD"`
	Note          string                `json:"note" validate:"max=500"`
}

// TransactionPreview is what the document would look like if submitted now
type TransactionPreview struct {
	Type       model.TransactionType `json:"type"`
	VATPercent decimal.Decimal       `json:"vat_percent"`
	Items      []ledger.LineItem     `json:"items"`
	Totals     ledger.Totals         `json:"totals"`
}

type LineAction string

const (
	LineAdd    LineAction = "add"
	LineUpdate LineAction = "update"
	LineRemove LineAction = "remove"
)

// LineEditRequest is one edit made on the document screen. Lines are the
// lines the screen holds before the edit; they were admitted by earlier
// edits and are not checked again.
type LineEditRequest struct {
	Type       model.TransactionType `json:"type" validate:"required,oneof=PURCHASE SALE"`
	VATPercent *decimal.Decimal      `json:"vat_percent"`
	Lines      []ledger.LineItem     `json:"lines"`
	Action     LineAction            `json:"action" validate:"required,oneof=add update remove"`
	Index      int                   `json:"index" validate:"min=0"`
	Field      ledger.Field          `json:"field"`
	Quantity   int                   `json:"quantity"`
	Amount     decimal.Decimal       `json:"amount"`
	ProductID  uuid.UUID             `json:"product_id"`
	Replacing  *uuid.UUID            `json:"replacing"`
}

// LineError points at the request line that was refused
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Index+1, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type stockChange struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
}

type transactionService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
	contactRepo repository.ContactRepository
	db          *gorm.DB
	events      Publisher
	log         *zap.Logger
	defaultVAT  decimal.Decimal
	now         func() time.Time
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	contactRepo repository.ContactRepository,
	db *gorm.DB,
	events Publisher,
	log *zap.Logger,
	defaultVAT decimal.Decimal,
) TransactionService {
	return &transactionService{
		txRepo:      txRepo,
		productRepo: productRepo,
		contactRepo: contactRepo,
		db:          db,
		events:      events,
		log:         log,
		defaultVAT:  defaultVAT,
		now:         time.Now,
	}
}

func (s *transactionService) GetTransactions(filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.txRepo.FindAll(filter)
}

func (s *transactionService) GetTransaction(id uuid.UUID) (*model.Transaction, error) {
	t, err := s.txRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return t, nil
}

// PreviewTransaction runs the same admission and totals as a submission
// without locking or writing anything. When replacing is set, the stock
// held by that document counts as available, as it would on update.
func (s *transactionService) PreviewTransaction(req *TransactionRequest, replacing *uuid.UUID) (*TransactionPreview, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var prior map[uuid.UUID]int
	ids := productIDs(req.Items)
	if replacing != nil {
		existing, err := s.txRepo.FindByID(*replacing)
		if err != nil {
			return nil, notFound(err, ErrTransactionNotFound)
		}
		if existing.Type != req.Type {
			return nil, ErrTypeImmutable
		}
		prior = existing.StockDelta()
		ids = productIDs(req.Items, existing.LineItems())
	}

	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	l, err := s.admit(req.Type, s.vat(req.VATPercent), snapshot(products, prior), req.Items)
	if err != nil {
		return nil, err
	}
	return &TransactionPreview{
		Type:       req.Type,
		VATPercent: l.VATPercent(),
		Items:      l.Lines(),
		Totals:     l.Totals(),
	}, nil
}

// EditLines applies one add, update or remove to the given lines against a
// fresh catalog and returns the resulting lines and totals.
func (s *transactionService) EditLines(req *LineEditRequest) (*TransactionPreview, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	vat := s.vat(req.VATPercent)
	if err := checkScale(vat); err != nil {
		return nil, err
	}

	var prior map[uuid.UUID]int
	if req.Replacing != nil {
		existing, err := s.txRepo.FindByID(*req.Replacing)
		if err != nil {
			return nil, notFound(err, ErrTransactionNotFound)
		}
		if existing.Type != req.Type {
			return nil, ErrTypeImmutable
		}
		prior = existing.StockDelta()
	}

	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	catalog := snapshot(products, prior)

	l, err := ledger.Seed(req.Type.DocumentType(), vat, req.Lines)
	if err != nil {
		return nil, err
	}
	switch req.Action {
	case LineAdd:
		_, err = l.AddLine(catalog)
	case LineUpdate:
		if err = checkScale(req.Amount); err == nil {
			err = l.UpdateLine(catalog, req.Index, ledger.Update{
				Field:     req.Field,
				Quantity:  req.Quantity,
				Amount:    req.Amount,
				ProductID: req.ProductID,
			})
		}
		if err != nil {
			err = &LineError{Index: req.Index, Err: err}
		}
	case LineRemove:
		if err = l.RemoveLine(req.Index); err != nil {
			err = &LineError{Index: req.Index, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}

	return &TransactionPreview{
		Type:       req.Type,
		VATPercent: l.VATPercent(),
		Items:      l.Lines(),
		Totals:     l.Totals(),
	}, nil
}

func (s *transactionService) CreateTransaction(req *TransactionRequest, actor Actor) (*model.Transaction, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if err := s.checkContact(req.Type, req.ContactID); err != nil {
		return nil, err
	}

	var created model.Transaction
	var changes []stockChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.LockByIDs(tx, productIDs(req.Items))
		if err != nil {
			return err
		}
		l, err := s.admit(req.Type, s.vat(req.VATPercent), model.Catalog(products), req.Items)
		if err != nil {
			return err
		}

		now := s.now()
		number, err := s.txRepo.NextNumber(tx, req.Type, now)
		if err != nil {
			return err
		}

		created = model.Transaction{
			Number:          number,
			Type:            req.Type,
			ContactID:       req.ContactID,
			VATPercent:      l.VATPercent(),
			Items:           toItems(l.Lines()),
			PaymentMethod:   req.PaymentMethod,
			Note:            req.Note,
			CreatedByUserID: &actor.ID,
		}
		created.CreatedAt = now
		created.CreatedBy = actor.ID
		created.UpdatedBy = actor.ID
		created.ApplyTotals(l.Totals())

		if changes, err = s.applyStock(tx, products, created.StockDelta(), actor); err != nil {
			return err
		}
		return s.txRepo.Create(tx, &created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction created",
		zap.String("number", created.Number),
		zap.String("type", string(created.Type)),
		zap.String("grand_total", created.GrandTotal.String()),
		zap.String("by", actor.ID),
	)
	s.publish("transaction_created", &created, changes, actor,
		fmt.Sprintf("%s recorded %s (%d lines)", actor.Name, created.Number, len(created.Items)))

	return s.GetTransaction(created.ID)
}

// UpdateTransaction replaces the lines of a document. Its previous stock
// effect is reversed before the new lines are admitted, so a sale can keep
// the units it already holds.
func (s *transactionService) UpdateTransaction(id uuid.UUID, req *TransactionRequest, actor Actor) (*model.Transaction, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	if err := s.checkContact(req.Type, req.ContactID); err != nil {
		return nil, err
	}

	var updated *model.Transaction
	var changes []stockChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.txRepo.LockByID(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}
		if existing.Type != req.Type {
			return ErrTypeImmutable
		}

		prior := existing.StockDelta()
		products, err := s.productRepo.LockByIDs(tx, productIDs(req.Items, existing.LineItems()))
		if err != nil {
			return err
		}
		l, err := s.admit(req.Type, s.vat(req.VATPercent), snapshot(products, prior), req.Items)
		if err != nil {
			return err
		}

		existing.ContactID = req.ContactID
		existing.VATPercent = l.VATPercent()
		existing.Items = toItems(l.Lines())
		existing.PaymentMethod = req.PaymentMethod
		existing.Note = req.Note
		existing.UpdatedBy = actor.ID
		existing.ApplyTotals(l.Totals())

		delta := existing.StockDelta()
		for productID, qty := range prior {
			delta[productID] -= qty
		}
		if changes, err = s.applyStock(tx, products, delta, actor); err != nil {
			return err
		}
		updated = existing
		return s.txRepo.ReplaceItems(tx, existing)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transaction updated", zap.String("number", updated.Number), zap.String("by", actor.ID))
	s.publish("transaction_updated", updated, changes, actor,
		fmt.Sprintf("%s updated %s", actor.Name, updated.Number))

	return s.GetTransaction(id)
}

// DeleteTransaction reverses the stock effect of the document and soft
// deletes it. Deleting a purchase whose units were already sold fails.
func (s *transactionService) DeleteTransaction(id uuid.UUID, actor Actor) error {
	var deleted *model.Transaction
	var changes []stockChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.txRepo.LockByID(tx, id)
		if err != nil {
			return notFound(err, ErrTransactionNotFound)
		}

		reverse := make(map[uuid.UUID]int)
		for productID, qty := range existing.StockDelta() {
			reverse[productID] = -qty
		}
		products, err := s.productRepo.LockByIDs(tx, productIDs(existing.LineItems()))
		if err != nil {
			return err
		}
		if changes, err = s.applyStock(tx, products, reverse, actor); err != nil {
			return err
		}
		deleted = existing
		return s.txRepo.Delete(tx, id, actor.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("transaction deleted", zap.String("number", deleted.Number), zap.String("by", actor.ID))
	s.publish("transaction_deleted", deleted, changes, actor,
		fmt.Sprintf("%s deleted %s", actor.Name, deleted.Number))
	return nil
}

// admit replays items through a fresh ledger so every line passes the same
// stock ceiling the editing screen enforces.
func (s *transactionService) admit(txType model.TransactionType, vat decimal.Decimal, catalog []ledger.Product, items []ledger.LineItem) (*ledger.Ledger, error) {
	l, err := ledger.New(txType.DocumentType(), vat, ledger.WithChangeHook(func(c ledger.Change) {
		s.log.Debug("line admitted",
			zap.String("kind", string(c.Kind)),
			zap.Int("index", c.Index),
			zap.Stringer("product_id", c.Line.ProductID),
			zap.Int("quantity", c.Line.Quantity),
		)
	}))
	if err != nil {
		return nil, err
	}
	if err := checkScale(vat); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := checkScale(item.Price, item.Discount); err != nil {
			return nil, &LineError{Index: i, Err: err}
		}
		if err := l.Append(catalog, item); err != nil {
			return nil, &LineError{Index: i, Err: err}
		}
	}
	return l, nil
}

// checkScale refuses amounts with more decimal places than the item and VAT
// columns hold, so stored totals always match the computed ones.
func checkScale(amounts ...decimal.Decimal) error {
	for _, d := range amounts {
		if !d.Equal(d.Truncate(amountPlaces)) {
			return fmt.Errorf("%w: %s", ErrTooManyDecimals, d)
		}
	}
	return nil
}

func (s *transactionService) applyStock(tx *gorm.DB, products []model.Product, delta map[uuid.UUID]int, actor Actor) ([]stockChange, error) {
	changes := make([]stockChange, 0, len(delta))
	for _, p := range products {
		d := delta[p.ID]
		if d == 0 {
			continue
		}
		newStock := p.Stock + d
		if newStock < 0 {
			return nil, fmt.Errorf("%w: %s has %d in stock, %d required", ErrStockWouldGoNegative, p.SKU, p.Stock, -d)
		}
		if err := s.productRepo.UpdateStock(tx, p.ID, newStock, actor.ID); err != nil {
			return nil, err
		}
		changes = append(changes, stockChange{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			OldStock:  p.Stock,
			NewStock:  newStock,
		})
	}
	return changes, nil
}

func (s *transactionService) checkContact(txType model.TransactionType, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	contact, err := s.contactRepo.FindByID(*id)
	if err != nil {
		return notFound(err, ErrContactNotFound)
	}
	if contact.Type != txType.ContactType() {
		return fmt.Errorf("%w: %s documents go to a %s", ErrContactTypeMismatch, txType, txType.ContactType())
	}
	return nil
}

func (s *transactionService) vat(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return s.defaultVAT
	}
	return *v
}

func (s *transactionService) publish(action string, t *model.Transaction, changes []stockChange, actor Actor, message string) {
	s.events.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"transaction": map[string]interface{}{
			"id":          t.ID,
			"number":      t.Number,
			"type":        t.Type,
			"grand_total": t.GrandTotal,
			"items":       len(t.Items),
		},
		"stock":   changes,
		"user":    actor.event(),
		"message": message,
	})
}

// snapshot builds the ledger catalog from locked rows. prior is the stock
// effect of the document being replaced; it is taken back out so those
// units count as available again.
func snapshot(products []model.Product, prior map[uuid.UUID]int) []ledger.Product {
	catalog := model.Catalog(products)
	for i := range catalog {
		catalog[i].StockQuantity -= prior[catalog[i].ID]
	}
	return catalog
}

// productIDs returns the distinct product ids of the given lines, sorted
func productIDs(sets ...[]ledger.LineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, lines := range sets {
		for _, line := range lines {
			if !seen[line.ProductID] {
				seen[line.ProductID] = true
				ids = append(ids, line.ProductID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func toItems(lines []ledger.LineItem) []model.TransactionItem {
	items := make([]model.TransactionItem, len(lines))
	for i, line := range lines {
		items[i] = model.TransactionItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Discount:  line.Discount,
		}
	}
	return items
}
