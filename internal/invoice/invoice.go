// Package invoice renders purchase and sale documents as PDF.
package invoice

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"autoparts-inventory/internal/ledger"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	margin       = 15.0
	rowHeight    = 7.0
	headerHeight = 8.0
	font         = "Helvetica"
)

type Company struct {
	Name    string
	Address string
	Phone   string
}

// Party is the customer of a sale or the vendor of a purchase
type Party struct {
	Name      string
	Address   string
	Phone     string
	Email     string
	TaxNumber string
}

type Line struct {
	SKU         string
	Description string
	Quantity    int
	Price       decimal.Decimal
	Totals      ledger.LineTotals
}

type Document struct {
	Number        string
	Type          ledger.DocumentType
	Date          time.Time
	Party         *Party
	Lines         []Line
	VATPercent    decimal.Decimal
	Totals        ledger.Totals
	Currency      string
	PaymentMethod string
	Note          string
}

// Title is the heading printed on the document
func (d Document) Title() string {
	if d.Type == ledger.Purchase {
		return "PURCHASE ORDER"
	}
	return "INVOICE"
}

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"#", 8, "C"},
	{"SKU", 25, "L"},
	{"Description", 55, "L"},
	{"Qty", 14, "R"},
	{"Price", 22, "R"},
	{"Discount", 18, "R"},
	{"VAT", 18, "R"},
	{"Net", 20, "R"},
}

// Render writes doc as a PDF to w.
func Render(w io.Writer, company Company, doc Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title()+" "+doc.Number, true)
	pdf.SetCreator(company.Name, true)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), company: company, doc: doc}
	pdf.SetFooterFunc(r.footer)

	for i, page := range Paginate(len(doc.Lines), FirstPageRows, OtherPageRows) {
		pdf.AddPage()
		if i == 0 {
			r.header()
		}
		if page.End > page.Start {
			r.tableHeader()
			for row := page.Start; row < page.End; row++ {
				r.row(row)
			}
		}
		if page.Totals {
			r.totals()
		}
	}
	return pdf.Output(w)
}

type renderer struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	company Company
	doc     Document
}

func (r *renderer) header() {
	pdf := r.pdf

	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(110, 8, r.tr(r.company.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, r.doc.Title(), "", 1, "R", false, 0, "")

	pdf.SetFont(font, "", 9)
	pdf.CellFormat(110, 5, r.tr(r.company.Address), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "No. "+r.doc.Number, "", 1, "R", false, 0, "")
	pdf.CellFormat(110, 5, r.tr(r.company.Phone), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Date "+r.doc.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	label := "Bill to"
	if r.doc.Type == ledger.Purchase {
		label = "Supplier"
	}
	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(0, 6, label, "B", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 9)
	if p := r.doc.Party; p != nil {
		pdf.CellFormat(0, 5, r.tr(p.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, r.tr(p.Address), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, r.tr(joinNonEmpty(p.Phone, p.Email)), "", 1, "L", false, 0, "")
		if p.TaxNumber != "" {
			pdf.CellFormat(0, 5, "Tax no. "+r.tr(p.TaxNumber), "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(0, 5, "Walk-in", "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *renderer) tableHeader() {
	pdf := r.pdf
	pdf.SetFont(font, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, headerHeight, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
}

func (r *renderer) row(i int) {
	pdf := r.pdf
	line := r.doc.Lines[i]
	pdf.SetFont(font, "", 9)
	cells := []string{
		strconv.Itoa(i + 1),
		r.tr(line.SKU),
		r.tr(truncate(pdf, line.Description, columns[2].width-2)),
		strconv.Itoa(line.Quantity),
		money(line.Price),
		money(line.Totals.Discount),
		money(line.Totals.VAT),
		money(line.Totals.Net),
	}
	for j, c := range columns {
		pdf.CellFormat(c.width, rowHeight, cells[j], "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
}

func (r *renderer) totals() {
	pdf := r.pdf
	t := r.doc.Totals
	pdf.Ln(3)

	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Gross", t.TotalGross},
		{"Discount", t.TotalDiscount},
		{"After discount", t.TotalAfterDiscount},
		{"VAT " + r.doc.VATPercent.String() + "%", t.TotalVAT},
	}
	pdf.SetFont(font, "", 9)
	for _, row := range rows {
		pdf.CellFormat(140, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 6, money(row.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(140, 8, "Grand total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(0, 8, r.doc.Currency+" "+money(t.GrandTotal), "T", 1, "R", false, 0, "")

	pdf.SetFont(font, "", 8)
	if r.doc.PaymentMethod != "" {
		pdf.CellFormat(0, 5, "Payment: "+r.tr(r.doc.PaymentMethod), "", 1, "L", false, 0, "")
	}
	if r.doc.Note != "" {
		pdf.CellFormat(0, 5, r.tr(r.doc.Note), "", 1, "L", false, 0, "")
	}
}

func (r *renderer) footer() {
	pdf := r.pdf
	pdf.SetY(-margin)
	pdf.SetFont(font, "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("%s - page %d/{nb}", r.doc.Number, pdf.PageNo()), "", 0, "C", false, 0, "")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " / " + b
}

// truncate shortens s with an ellipsis until it fits width at the current font
func truncate(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
