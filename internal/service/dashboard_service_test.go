package service

import (
	"testing"
	"time"

	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeStart(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		key      string
		expected time.Time
	}{
		{"", time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC)},
		{"7d", time.Date(2026, 10, 8, 12, 0, 0, 0, time.UTC)},
		{"1m", time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)},
		{"3m", time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)},
		{"6m", time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)},
		{"12m", time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			start, err := RangeStart(tt.key, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, start)
		})
	}

	_, err := RangeStart("2w", now)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDashboardService(t *testing.T) {
	txSvc, db, _ := newTransactionService(t)
	now := txSvc.now()

	oil := seedProduct(t, db, "OIL-1", "10", 0)
	seedProduct(t, db, "BLB-1", "2", 3)
	seedContact(t, db, model.ContactCustomer, "Garage")
	seedContact(t, db, model.ContactCustomer, "Fleet")
	seedContact(t, db, model.ContactVendor, "Supplier")

	_, err := txSvc.CreateTransaction(&TransactionRequest{
		Type:       model.TxPurchase,
		VATPercent: vat("10"),
		Items:      []ledger.LineItem{line(oil, 10, "6", "0")},
	}, testActor)
	require.NoError(t, err)
	_, err = txSvc.CreateTransaction(&TransactionRequest{
		Type:       model.TxSale,
		VATPercent: vat("10"),
		Items:      []ledger.LineItem{line(oil, 4, "10", "0")},
	}, testActor)
	require.NoError(t, err)

	svc := NewDashboardService(repository.NewTransactionRepo(db), repository.NewContactRepo(db), 5).(*dashboardService)
	svc.now = func() time.Time { return now.Add(time.Hour) }

	stats, err := svc.GetDashboardStats("")
	require.NoError(t, err)
	assert.Equal(t, "7d", stats.Range)
	assert.EqualValues(t, 2, stats.Inventory.TotalProducts)
	// 6 oil and 3 bulbs against a threshold of 5
	assert.EqualValues(t, 1, stats.Inventory.LowStockCount)
	assert.True(t, stats.Inventory.TotalValuation.Equal(dec("66")), stats.Inventory.TotalValuation.String())
	assert.EqualValues(t, 2, stats.Customers)
	assert.EqualValues(t, 1, stats.Vendors)

	f := stats.Financial
	assert.EqualValues(t, 1, f.SalesCount)
	assert.EqualValues(t, 1, f.PurchasesCount)
	assert.True(t, f.SalesTotal.Equal(dec("44")), f.SalesTotal.String())
	assert.True(t, f.PurchasesTotal.Equal(dec("66")), f.PurchasesTotal.String())
	assert.True(t, f.SalesVAT.Equal(dec("4")), f.SalesVAT.String())
	assert.True(t, f.GrossMargin.Equal(dec("-20")), f.GrossMargin.String())

	movement, err := svc.GetStockMovement("1m")
	require.NoError(t, err)
	require.Len(t, movement, 1)
	assert.Equal(t, "2026-10-15", movement[0].Date)
	assert.Equal(t, 10, movement[0].Inbound)
	assert.Equal(t, 4, movement[0].Outbound)

	_, err = svc.GetDashboardStats("forever")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
