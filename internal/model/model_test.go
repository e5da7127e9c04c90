package model

import (
	"testing"
	"time"

	"autoparts-inventory/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_StockDelta(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	items := []TransactionItem{
		{ProductID: a, Quantity: 2},
		{ProductID: b, Quantity: 1},
		{ProductID: a, Quantity: 3},
	}

	sale := Transaction{Type: TxSale, Items: items}
	assert.Equal(t, map[uuid.UUID]int{a: -5, b: -1}, sale.StockDelta())

	purchase := Transaction{Type: TxPurchase, Items: items}
	assert.Equal(t, map[uuid.UUID]int{a: 5, b: 1}, purchase.StockDelta())

	assert.Empty(t, (&Transaction{Type: TxSale}).StockDelta())
}

func TestTransaction_LineItemsAndTotals(t *testing.T) {
	id := uuid.New()
	tx := Transaction{Type: TxSale, Items: []TransactionItem{
		{ProductID: id, Quantity: 3, Price: decimal.RequireFromString("19.99"), Discount: decimal.RequireFromString("5")},
	}}

	lines := tx.LineItems()
	require.Len(t, lines, 1)
	assert.Equal(t, id, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)

	tx.ApplyTotals(ledger.ComputeTotals(lines, decimal.NewFromInt(15)))
	assert.Equal(t, "59.97", tx.TotalGross.String())
	assert.Equal(t, "5", tx.TotalDiscount.String())
	assert.Equal(t, "8.2455", tx.TotalVAT.String())
	assert.Equal(t, "63.2155", tx.GrandTotal.String())
}

func TestTransactionType(t *testing.T) {
	assert.Equal(t, ContactCustomer, TxSale.ContactType())
	assert.Equal(t, ContactVendor, TxPurchase.ContactType())
	assert.Equal(t, ledger.DocumentType("SALE"), TxSale.DocumentType())
}

func TestProduct_Catalog(t *testing.T) {
	cat := uuid.New()
	products := []Product{
		{BaseModel: BaseModel{ID: uuid.New()}, Name: "Brake pad", Price: decimal.NewFromInt(10), Stock: 4, CategoryID: &cat},
		{BaseModel: BaseModel{ID: uuid.New()}, Name: "Oil filter", Price: decimal.NewFromInt(7), Stock: 0},
	}

	catalog := Catalog(products)
	require.Len(t, catalog, 2)
	assert.Equal(t, products[0].ID, catalog[0].ID)
	assert.Equal(t, 4, catalog[0].StockQuantity)
	assert.Equal(t, &cat, catalog[0].CategoryID)
	assert.Equal(t, "Oil filter", catalog[1].Name)
	assert.Nil(t, catalog[1].CategoryID)
}

func TestUser_IsIdle(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	u := User{}
	assert.True(t, u.IsIdle(now, time.Minute))

	seen := now.Add(-30 * time.Second)
	u.LastSeenAt = &seen
	assert.False(t, u.IsIdle(now, time.Minute))
	assert.True(t, u.IsIdle(now, 10*time.Second))
}

func TestUser_Password(t *testing.T) {
	PasswordCost = 4
	u := User{}
	require.NoError(t, u.SetPassword("secret123"))
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("secret124"))
}

func TestRolePrivileges(t *testing.T) {
	admin := AdminPrivileges(DefaultPrivileges)
	assert.Len(t, admin, len(DefaultPrivileges)-4)
	for _, p := range admin {
		assert.NotEqual(t, "user:create", p.Code)
	}

	clerk := ClerkPrivileges(DefaultPrivileges)
	codes := make([]string, len(clerk))
	for i, p := range clerk {
		codes[i] = p.Code
	}
	assert.ElementsMatch(t, []string{
		"product:view", "contact:view", "contact:create",
		"transaction:view", "transaction:create", "dashboard:view",
	}, codes)
}

func TestBaseModel_BeforeCreate(t *testing.T) {
	var b BaseModel
	require.NoError(t, b.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, b.ID)

	fixed := uuid.New()
	b = BaseModel{ID: fixed}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, fixed, b.ID)
}
