package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"autoparts-inventory/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, data []byte, comma rune) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriter_Products(t *testing.T) {
	var buf bytes.Buffer
	products := []model.Product{
		{SKU: "FLT-001", Name: "Oil filter, \"premium\"", Unit: "pcs", Stock: 4, Price: decimal.RequireFromString("7.5"),
			Category: &model.Category{Name: "Filters"}},
		{SKU: "BLB-H4", Name: "H4 bulb", Stock: 0, Price: decimal.RequireFromString("3.333")},
	}

	require.NoError(t, NewWriter(&buf).Products(products))

	records := readAll(t, buf.Bytes(), ',')
	require.Len(t, records, 3)
	assert.Equal(t, []string{"sku", "name", "category", "unit", "stock", "price", "stock_value"}, records[0])
	assert.Equal(t, []string{"FLT-001", "Oil filter, \"premium\"", "Filters", "pcs", "4", "7.50", "30.00"}, records[1])
	assert.Equal(t, []string{"BLB-H4", "H4 bulb", "", "", "0", "3.33", "0.00"}, records[2])
}

func TestWriter_ContactsWithOptions(t *testing.T) {
	var buf bytes.Buffer
	contacts := []model.Contact{{Type: model.ContactVendor, Name: "Parts Supplier", Email: "sales@parts.test"}}

	require.NoError(t, NewWriter(&buf, WithDelimiter(';'), WithBOM()).Contacts(contacts))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	records := readAll(t, data[3:], ';')
	require.Len(t, records, 2)
	assert.Equal(t, "VENDOR", records[1][0])
	assert.Equal(t, "sales@parts.test", records[1][2])
}

func TestWriter_Transactions(t *testing.T) {
	var buf bytes.Buffer
	tx := model.Transaction{
		Number:        "SAL-20261015-0001",
		Type:          model.TxSale,
		Contact:       &model.Contact{Name: "Walk-in Garage"},
		VATPercent:    decimal.NewFromInt(5),
		Items:         []model.TransactionItem{{Quantity: 5}},
		TotalGross:    decimal.NewFromInt(50),
		TotalDiscount: decimal.Zero,
		TotalVAT:      decimal.RequireFromString("2.5"),
		GrandTotal:    decimal.RequireFromString("52.5"),
		PaymentMethod: "CASH",
	}
	tx.CreatedAt = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	require.NoError(t, NewWriter(&buf).Transactions([]model.Transaction{tx}))

	records := readAll(t, buf.Bytes(), ',')
	require.Len(t, records, 2)
	assert.Equal(t, []string{
		"SAL-20261015-0001", "2026-10-15 08:00:00", "SALE", "Walk-in Garage", "1", "5",
		"50.00", "0.00", "2.50", "52.50", "CASH",
	}, records[1])
}

func TestWriter_EscapesFormulaCells(t *testing.T) {
	var buf bytes.Buffer
	contacts := []model.Contact{{
		Type:    model.ContactCustomer,
		Name:    "=HYPERLINK(\"http://x.test\",\"pay\")",
		Phone:   "+62 812 555",
		Email:   "@sum(A1:A9)",
		Address: "-2+3",
	}}
	products := []model.Product{{SKU: "\tTAB-1", Name: "Plain name", Price: decimal.RequireFromString("-1.5")}}

	require.NoError(t, NewWriter(&buf).Contacts(contacts))
	records := readAll(t, buf.Bytes(), ',')
	require.Len(t, records, 2)
	assert.Equal(t, "'=HYPERLINK(\"http://x.test\",\"pay\")", records[1][1])
	assert.Equal(t, "'@sum(A1:A9)", records[1][2])
	assert.Equal(t, "'+62 812 555", records[1][3])
	assert.Equal(t, "'-2+3", records[1][4])
	assert.Equal(t, "", records[1][5])

	buf.Reset()
	require.NoError(t, NewWriter(&buf).Products(products))
	records = readAll(t, buf.Bytes(), ',')
	require.Len(t, records, 2)
	assert.Equal(t, "'\tTAB-1", records[1][0])
	assert.Equal(t, "Plain name", records[1][1])
	// amounts are generated, never escaped
	assert.Equal(t, "-1.50", records[1][5])
}
