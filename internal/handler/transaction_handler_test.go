package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"autoparts-inventory/internal/invoice"
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/internal/service"
	"autoparts-inventory/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type nopPublisher struct{}

func (nopPublisher) Publish(any) {}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
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

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := openDB(t)
	log := zap.NewNop()
	txRepo := repository.NewTransactionRepo(db)
	productRepo := repository.NewProductRepo(db)
	contactRepo := repository.NewContactRepo(db)

	txService := service.NewTransactionService(txRepo, productRepo, contactRepo, db, nopPublisher{}, log, decimal.NewFromInt(11))
	invoiceService := service.NewInvoiceService(txRepo, invoice.Company{Name: "Auto Parts Co"}, "USD", log)
	reportService := service.NewReportService(productRepo, contactRepo, txRepo)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "tester")
		c.Locals("user_name", "Tester")
		return c.Next()
	})
	transactions := NewTransactionHandler(txService, invoiceService)
	app.Get("/transactions", transactions.GetTransactions)
	app.Post("/transactions/preview", transactions.PreviewTransaction)
	app.Post("/transactions/lines", transactions.EditLines)
	app.Post("/transactions", transactions.CreateTransaction)
	app.Get("/transactions/:id/invoice.pdf", transactions.GetInvoice)
	app.Get("/transactions/:id", transactions.GetTransaction)
	app.Delete("/transactions/:id", transactions.DeleteTransaction)
	reports := NewReportHandler(reportService)
	app.Get("/reports/products.csv", reports.ExportProducts)
	return app, db
}

func send(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestTransactionHandler_Flow(t *testing.T) {
	app, db := setupApp(t)
	p := &model.Product{SKU: "BRK-01", Name: "Brake pad", Price: decimal.NewFromInt(10), Stock: 3, Unit: "pcs"}
	require.NoError(t, db.Create(p).Error)

	sale := func(qty int) string {
		return fmt.Sprintf(`{"type":"SALE","items":[{"product_id":"%s","quantity":%d,"price":"10","discount":"0"}]}`, p.ID, qty)
	}

	status, body := send(t, app, "POST", "/transactions/preview", sale(2))
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), `"grand_total":"22.2"`)

	status, body = send(t, app, "POST", "/transactions", sale(5))
	assert.Equal(t, 409, status)
	assert.Contains(t, string(body), `"available":3`)

	status, _ = send(t, app, "POST", "/transactions", `{"type":"SALE","items":[]}`)
	assert.Equal(t, 422, status)

	status, _ = send(t, app, "POST", "/transactions", `{"type":"GIFT"}`)
	assert.Equal(t, 400, status)

	status, _ = send(t, app, "POST", "/transactions", `not json`)
	assert.Equal(t, 400, status)

	status, body = send(t, app, "POST", "/transactions", sale(2))
	require.Equal(t, 201, status, string(body))

	var created model.Transaction
	require.NoError(t, db.Order("created_at DESC").First(&created).Error)

	status, body = send(t, app, "GET", "/transactions/"+created.ID.String(), "")
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), created.Number)

	status, body = send(t, app, "GET", "/transactions/"+created.ID.String()+"/invoice.pdf", "")
	assert.Equal(t, 200, status)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	status, body = send(t, app, "GET", "/reports/products.csv", "")
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), "BRK-01")

	status, _ = send(t, app, "GET", "/transactions?from=yesterday", "")
	assert.Equal(t, 400, status)

	status, _ = send(t, app, "DELETE", "/transactions/"+created.ID.String(), "")
	assert.Equal(t, 200, status)
	status, _ = send(t, app, "GET", "/transactions/"+created.ID.String(), "")
	assert.Equal(t, 404, status)
	status, _ = send(t, app, "GET", "/transactions/not-a-uuid", "")
	assert.Equal(t, 400, status)
}

func TestTransactionHandler_EditLines(t *testing.T) {
	app, db := setupApp(t)
	p := &model.Product{SKU: "FLT-02", Name: "Oil filter", Price: decimal.NewFromInt(8), Stock: 2, Unit: "pcs"}
	require.NoError(t, db.Create(p).Error)

	edit := func(lines, op string) string {
		return fmt.Sprintf(`{"type":"SALE","vat_percent":"10","lines":[%s],%s}`, lines, op)
	}
	held := fmt.Sprintf(`{"product_id":"%s","quantity":2,"price":"8","discount":"0"}`, p.ID)

	status, body := send(t, app, "POST", "/transactions/lines", edit("", `"action":"add"`))
	require.Equal(t, 200, status, string(body))
	assert.Contains(t, string(body), p.ID.String())
	assert.Contains(t, string(body), `"grand_total":"8.8"`)

	// every unit is already on a line
	status, body = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"add"`))
	assert.Equal(t, 409, status)
	assert.Contains(t, string(body), "remaining stock")

	status, body = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"update","index":0,"field":"quantity","quantity":3`))
	assert.Equal(t, 409, status)
	assert.Contains(t, string(body), `"available":2`)
	assert.Contains(t, string(body), `"line":0`)

	status, body = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"update","index":0,"field":"discount","amount":"1.5"`))
	require.Equal(t, 200, status, string(body))
	assert.Contains(t, string(body), `"grand_total":"15.95"`)

	status, _ = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"update","index":0,"field":"price","amount":"8.005"`))
	assert.Equal(t, 422, status)

	status, body = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"remove","index":0`))
	require.Equal(t, 200, status, string(body))
	assert.Contains(t, string(body), `"items":[]`)

	status, _ = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"remove","index":4`))
	assert.Equal(t, 422, status)

	status, _ = send(t, app, "POST", "/transactions/lines", edit(held, `"action":"merge"`))
	assert.Equal(t, 400, status)
}
