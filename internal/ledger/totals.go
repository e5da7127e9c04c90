package ledger

import "github.com/shopspring/decimal"

// LineTotals are the derived amounts of one line item.
type LineTotals struct {
	Gross         decimal.Decimal `json:"gross"`
	Discount      decimal.Decimal `json:"discount"`
	AfterDiscount decimal.Decimal `json:"after_discount"`
	VAT           decimal.Decimal `json:"vat"`
	Net           decimal.Decimal `json:"net"`
}

// Totals is the full summary shown on screen, stored with the transaction
// and printed on the invoice.
type Totals struct {
	Lines              []LineTotals    `json:"lines"`
	TotalGross         decimal.Decimal `json:"total_gross"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	TotalAfterDiscount decimal.Decimal `json:"total_after_discount"`
	TotalVAT           decimal.Decimal `json:"total_vat"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

// ComputeTotals derives per-line and document totals. It has no side
// effects and is exact: the VAT of a line is afterDiscount*vat/100 with no
// rounding, so the document VAT always equals the sum of line VATs.
//
// Negative discounts or a discount above gross are not clamped.
func ComputeTotals(lines []LineItem, vatPercent decimal.Decimal) Totals {
	t := Totals{
		Lines:         make([]LineTotals, 0, len(lines)),
		TotalGross:    decimal.Zero,
		TotalDiscount: decimal.Zero,
	}

	for _, line := range lines {
		gross := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		after := gross.Sub(line.Discount)
		vat := vatOf(after, vatPercent)
		t.Lines = append(t.Lines, LineTotals{
			Gross:         gross,
			Discount:      line.Discount,
			AfterDiscount: after,
			VAT:           vat,
			Net:           after.Add(vat),
		})
		t.TotalGross = t.TotalGross.Add(gross)
		t.TotalDiscount = t.TotalDiscount.Add(line.Discount)
	}

	t.TotalAfterDiscount = t.TotalGross.Sub(t.TotalDiscount)
	t.TotalVAT = vatOf(t.TotalAfterDiscount, vatPercent)
	t.GrandTotal = t.TotalAfterDiscount.Add(t.TotalVAT)
	return t
}

// Shift(-2) divides by 100 without the rounding Div applies.
func vatOf(amount, vatPercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(vatPercent).Shift(-2)
}
