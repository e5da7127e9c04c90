package repository

import (
	"fmt"
	"time"

	"autoparts-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionFilter struct {
	Type      model.TransactionType
	ContactID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.Transaction) error
	ReplaceItems(tx *gorm.DB, transaction *model.Transaction) error
	Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error
	FindAll(filter TransactionFilter) ([]model.Transaction, error)
	FindByID(id uuid.UUID) (*model.Transaction, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	NextNumber(tx *gorm.DB, txType model.TransactionType, at time.Time) (string, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(lowStockThreshold int) (*DashboardStats, error)
	GetFinancialSummary(startDate, endDate time.Time) (*FinancialSummary, error)
}

// StockMovementData is one day of the stock movement chart
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the catalog overview
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	OutOfStock     int64           `json:"out_of_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

// FinancialSummary totals the documents of a period
type FinancialSummary struct {
	SalesTotal     decimal.Decimal `json:"sales_total"`
	PurchasesTotal decimal.Decimal `json:"purchases_total"`
	SalesCount     int64           `json:"sales_count"`
	PurchasesCount int64           `json:"purchases_count"`
	SalesVAT       decimal.Decimal `json:"sales_vat"`
	GrossMargin    decimal.Decimal `json:"gross_margin"` // sales minus purchases, both net of VAT
}

var numberPrefix = map[model.TransactionType]string{
	model.TxSale:     "SAL",
	model.TxPurchase: "PUR",
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// withDetails preloads what a document view needs. Deleted products and
// contacts are still shown on the documents that reference them.
func (r *transactionRepo) withDetails() *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return r.db.
		Preload("Contact", unscoped).
		Preload("CreatedByUser").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product", unscoped)
}

func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Omit("Contact", "CreatedByUser").Create(transaction).Error
}

// ReplaceItems rewrites the header and swaps the item rows of an existing document
func (r *transactionRepo) ReplaceItems(tx *gorm.DB, transaction *model.Transaction) error {
	if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&model.TransactionItem{}).Error; err != nil {
		return err
	}
	for i := range transaction.Items {
		transaction.Items[i].ID = 0
		transaction.Items[i].TransactionID = transaction.ID
	}
	if len(transaction.Items) > 0 {
		if err := tx.Omit("Product").Create(&transaction.Items).Error; err != nil {
			return err
		}
	}
	return tx.Omit(clause.Associations).Save(transaction).Error
}

func (r *transactionRepo) Delete(tx *gorm.DB, id uuid.UUID, deletedBy string) error {
	if err := tx.Model(&model.Transaction{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionItem{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&model.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.withDetails()
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ContactID != nil {
		q = q.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	err := q.Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.withDetails().First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("transaction_id = ?", id).Order("id ASC").Find(&transaction.Items).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// NextNumber returns e.g. SAL-20261015-0003. Soft-deleted documents still
// count so numbers are never reused.
func (r *transactionRepo) NextNumber(tx *gorm.DB, txType model.TransactionType, at time.Time) (string, error) {
	prefix, ok := numberPrefix[txType]
	if !ok {
		return "", fmt.Errorf("unknown transaction type %q", txType)
	}
	stem := fmt.Sprintf("%s-%s-", prefix, at.Format("20060102"))

	var count int64
	if err := tx.Unscoped().Model(&model.Transaction{}).Where("number LIKE ?", stem+"%").Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", stem, count+1), nil
}

func (r *transactionRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	results := make([]StockMovementData, 0)

	rows, err := r.db.Table("transaction_items").
		Select(`
			DATE(transactions.created_at) as date,
			COALESCE(SUM(CASE WHEN transactions.type = ? THEN transaction_items.quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transactions.type = ? THEN transaction_items.quantity ELSE 0 END), 0) as outbound
		`, model.TxPurchase, model.TxSale).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.deleted_at IS NULL").
		Where("transactions.created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(transactions.created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		// Postgres hands DATE back as a timestamp string.
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(lowStockThreshold int) (*DashboardStats, error) {
	stats := DashboardStats{TotalValuation: decimal.Zero}

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("stock < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.Product{}).Where("stock <= 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}

	var row struct {
		Valuation decimal.NullDecimal
	}
	if err := r.db.Model(&model.Product{}).Select("SUM(stock * price) AS valuation").Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.Valuation.Valid {
		stats.TotalValuation = row.Valuation.Decimal
	}
	return &stats, nil
}

func (r *transactionRepo) GetFinancialSummary(startDate, endDate time.Time) (*FinancialSummary, error) {
	var rows []struct {
		Type       model.TransactionType
		Count      int64
		GrandTotal decimal.NullDecimal
		TotalVAT   decimal.NullDecimal
	}
	err := r.db.Model(&model.Transaction{}).
		Select("type, COUNT(*) AS count, SUM(grand_total) AS grand_total, SUM(total_vat) AS total_vat").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := FinancialSummary{
		SalesTotal:     decimal.Zero,
		PurchasesTotal: decimal.Zero,
		SalesVAT:       decimal.Zero,
	}
	salesNet, purchasesNet := decimal.Zero, decimal.Zero
	for _, row := range rows {
		total := row.GrandTotal.Decimal
		vat := row.TotalVAT.Decimal
		switch row.Type {
		case model.TxSale:
			summary.SalesCount = row.Count
			summary.SalesTotal = total
			summary.SalesVAT = vat
			salesNet = total.Sub(vat)
		case model.TxPurchase:
			summary.PurchasesCount = row.Count
			summary.PurchasesTotal = total
			purchasesNet = total.Sub(vat)
		}
	}
	summary.GrossMargin = salesNet.Sub(purchasesNet)
	return &summary, nil
}
