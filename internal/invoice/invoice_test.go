package invoice

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"autoparts-inventory/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(lines int) Document {
	items := make([]ledger.LineItem, lines)
	for i := range items {
		items[i] = ledger.LineItem{
			ProductID: uuid.New(),
			Quantity:  i%3 + 1,
			Price:     decimal.RequireFromString("12.50"),
			Discount:  decimal.RequireFromString("1"),
		}
	}
	vat := decimal.NewFromInt(11)
	totals := ledger.ComputeTotals(items, vat)

	doc := Document{
		Number:     "SAL-20261015-0001",
		Type:       ledger.Sale,
		Date:       time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Party:      &Party{Name: "Bengkel Maju", Address: "Jl. Raya 12", Phone: "0812", TaxNumber: "01.234"},
		VATPercent: vat,
		Totals:     totals,
		Currency:   "IDR",
		Note:       "Thank you",
	}
	for i, it := range items {
		doc.Lines = append(doc.Lines, Line{
			SKU:         fmt.Sprintf("BRK-%03d", i),
			Description: "Brake pad front, ceramic compound, long description that needs truncating",
			Quantity:    it.Quantity,
			Price:       it.Price,
			Totals:      totals.Lines[i],
		})
	}
	return doc
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Company{Name: "Auto Parts Co", Address: "Main St 1", Phone: "555"}, testDocument(3))
	require.NoError(t, err)

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "/Count 1")
}

func TestRender_MultiPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Company{Name: "Auto Parts Co"}, testDocument(40)))

	// 26 rows on page one, 14 rows and the totals on page two
	assert.Contains(t, buf.String(), "/Count 2")
}

func TestRender_PurchaseWithoutParty(t *testing.T) {
	doc := testDocument(0)
	doc.Type = ledger.Purchase
	doc.Party = nil

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Company{}, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "PURCHASE ORDER", doc.Title())
}
