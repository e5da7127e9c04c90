// Package report writes CSV exports of the catalog, contacts and documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"autoparts-inventory/internal/model"

	"github.com/shopspring/decimal"
)

const timeLayout = "2006-01-02 15:04:05"

// Writer wraps csv.Writer with the export conventions
type Writer struct {
	out       io.Writer
	delimiter rune
	bom       bool
}

type Option func(*Writer)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(w *Writer) {
		w.delimiter = d
	}
}

// WithBOM prefixes the output with a UTF-8 byte order mark so spreadsheet
// tools detect the encoding.
func WithBOM() Option {
	return func(w *Writer) {
		w.bom = true
	}
}

func NewWriter(out io.Writer, opts ...Option) *Writer {
	w := &Writer{out: out, delimiter: ','}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) write(header []string, rows [][]string) error {
	if w.bom {
		if _, err := w.out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
	}
	cw := csv.NewWriter(w.out)
	cw.Comma = w.delimiter
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func (w *Writer) Products(products []model.Product) error {
	header := []string{"sku", "name", "category", "unit", "stock", "price", "stock_value"}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		rows = append(rows, []string{
			text(p.SKU),
			text(p.Name),
			text(category),
			text(p.Unit),
			strconv.Itoa(p.Stock),
			money(p.Price),
			money(p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))),
		})
	}
	return w.write(header, rows)
}

func (w *Writer) Contacts(contacts []model.Contact) error {
	header := []string{"type", "name", "email", "phone", "address", "tax_number"}
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			string(c.Type),
			text(c.Name),
			text(c.Email),
			text(c.Phone),
			text(c.Address),
			text(c.TaxNumber),
		})
	}
	return w.write(header, rows)
}

// Transactions writes one row per document with its stored totals
func (w *Writer) Transactions(transactions []model.Transaction) error {
	header := []string{
		"number", "date", "type", "contact", "items", "vat_percent",
		"total_gross", "total_discount", "total_vat", "grand_total", "payment_method",
	}
	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		contact := ""
		if t.Contact != nil {
			contact = t.Contact.Name
		}
		rows = append(rows, []string{
			text(t.Number),
			t.CreatedAt.Format(timeLayout),
			string(t.Type),
			text(contact),
			strconv.Itoa(len(t.Items)),
			t.VATPercent.String(),
			money(t.TotalGross),
			money(t.TotalDiscount),
			money(t.TotalVAT),
			money(t.GrandTotal),
			text(t.PaymentMethod),
		})
	}
	return w.write(header, rows)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// text neutralises user-entered cells that a spreadsheet would evaluate as
// a formula by prefixing them with a single quote.
func text(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
