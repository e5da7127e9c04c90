package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/service"
	"autoparts-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestFail(t *testing.T) {
	productID := uuid.New()
	shortage := &service.LineError{Index: 1, Err: &ledger.InsufficientStockError{ProductID: productID, Requested: 5, Available: 2}}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: field 'Name' failed on tag 'required'", validator.ErrValidation), 400},
		{"missing product", service.ErrProductNotFound, 404},
		{"missing transaction", fmt.Errorf("query: %w", service.ErrTransactionNotFound), 404},
		{"sku taken", service.ErrSKUExists, 409},
		{"category in use", service.ErrCategoryInUse, 409},
		{"negative stock", service.ErrStockWouldGoNegative, 409},
		{"shortage", shortage, 409},
		{"nothing left to add", ledger.ErrOutOfStock, 409},
		{"sub-cent price", &service.LineError{Index: 0, Err: fmt.Errorf("%w: 1.005", service.ErrTooManyDecimals)}, 422},
		{"empty catalog", ledger.ErrEmptyCatalog, 422},
		{"missing line", &service.LineError{Index: 7, Err: ledger.ErrLineNotFound}, 422},
		{"type change", service.ErrTypeImmutable, 422},
		{"unknown line product", &service.LineError{Index: 0, Err: ledger.ErrProductNotFound}, 422},
		{"bad quantity", &service.LineError{Index: 2, Err: ledger.ErrInvalidQuantity}, 422},
		{"bad range", service.ErrInvalidRange, 422},
		{"anything else", errors.New("disk on fire"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return fail(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	t.Run("shortage body", func(t *testing.T) {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return fail(c, shortage) })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		body := decodeBody(t, resp.Body)
		assert.Equal(t, productID.String(), body["product_id"])
		assert.EqualValues(t, 2, body["available"])
		assert.EqualValues(t, 5, body["requested"])
		assert.EqualValues(t, 1, body["line"])
	})

	t.Run("internal errors stay hidden", func(t *testing.T) {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return fail(c, errors.New("pq: password for user")) })

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		assert.False(t, strings.Contains(string(raw), "password"))
	})
}

func TestActor(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		return c.JSON(actor(c))
	})
	app.Get("/known", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u-1")
		c.Locals("user_name", "Clerk")
		c.Locals("user_email", "clerk@example.com")
		return c.JSON(actor(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/anon", nil))
	require.NoError(t, err)
	var a service.Actor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, "system", a.ID)

	resp, err = app.Test(httptest.NewRequest("GET", "/known", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, service.Actor{ID: "u-1", Name: "Clerk", Email: "clerk@example.com"}, a)
}
