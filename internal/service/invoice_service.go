package service

import (
	"io"

	"autoparts-inventory/internal/invoice"
	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceService interface {
	// RenderInvoice writes the PDF of a document to w and returns its file name
	RenderInvoice(id uuid.UUID, w io.Writer) (string, error)
}

type invoiceService struct {
	txRepo   repository.TransactionRepository
	company  invoice.Company
	currency string
	log      *zap.Logger
}

func NewInvoiceService(txRepo repository.TransactionRepository, company invoice.Company, currency string, log *zap.Logger) InvoiceService {
	return &invoiceService{txRepo: txRepo, company: company, currency: currency, log: log}
}

func (s *invoiceService) RenderInvoice(id uuid.UUID, w io.Writer) (string, error) {
	t, err := s.txRepo.FindByID(id)
	if err != nil {
		return "", notFound(err, ErrTransactionNotFound)
	}

	// Recomputed from the stored lines with the same function the screen and
	// the submission use, so the printed totals match the stored ones.
	totals := ledger.ComputeTotals(t.LineItems(), t.VATPercent)
	if !totals.GrandTotal.Equal(t.GrandTotal) {
		s.log.Warn("stored grand total differs from recomputed",
			zap.String("number", t.Number),
			zap.String("stored", t.GrandTotal.String()),
			zap.String("computed", totals.GrandTotal.String()),
		)
	}

	doc := invoice.Document{
		Number:        t.Number,
		Type:          t.Type.DocumentType(),
		Date:          t.CreatedAt,
		VATPercent:    t.VATPercent,
		Totals:        totals,
		Currency:      s.currency,
		PaymentMethod: t.PaymentMethod,
		Note:          t.Note,
	}
	if c := t.Contact; c != nil {
		doc.Party = &invoice.Party{
			Name:      c.Name,
			Address:   c.Address,
			Phone:     c.Phone,
			Email:     c.Email,
			TaxNumber: c.TaxNumber,
		}
	}
	for i, item := range t.Items {
		line := invoice.Line{
			Quantity:    item.Quantity,
			Price:       item.Price,
			Totals:      totals.Lines[i],
			Description: "(deleted product)",
		}
		if item.Product != nil {
			line.SKU = item.Product.SKU
			line.Description = item.Product.Name
		}
		doc.Lines = append(doc.Lines, line)
	}

	if err := invoice.Render(w, s.company, doc); err != nil {
		return "", err
	}
	return t.Number + ".pdf", nil
}
