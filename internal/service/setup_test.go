package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	model.PasswordCost = bcrypt.MinCost

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(database.Options{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (r *recorder) Publish(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := event.(map[string]interface{}); ok {
		r.events = append(r.events, m)
	}
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		if a, ok := e["action"].(string); ok {
			out = append(out, a)
		}
	}
	return out
}

var testActor = Actor{ID: "tester", Name: "Tester", Email: "tester@example.com"}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, db *gorm.DB, sku, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{SKU: sku, Name: "Part " + sku, Price: dec(price), Stock: stock, Unit: "pcs"}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedContact(t *testing.T, db *gorm.DB, contactType model.ContactType, name string) *model.Contact {
	t.Helper()
	c := &model.Contact{Type: contactType, Name: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

func stockOf(t *testing.T, db *gorm.DB, p *model.Product) int {
	t.Helper()
	var fresh model.Product
	require.NoError(t, db.First(&fresh, "id = ?", p.ID).Error)
	return fresh.Stock
}
