package handler

import (
	"bytes"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func sendCSV(c *fiber.Ctx, name string, buf *bytes.Buffer) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// GET /api/v1/reports/products.csv
func (h *ReportHandler) ExportProducts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportProducts(&buf); err != nil {
		return fail(c, err)
	}
	return sendCSV(c, "products.csv", &buf)
}

// GET /api/v1/reports/contacts.csv?type=
func (h *ReportHandler) ExportContacts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.ExportContacts(&buf, model.ContactType(c.Query("type"))); err != nil {
		return fail(c, err)
	}
	return sendCSV(c, "contacts.csv", &buf)
}

// GET /api/v1/reports/transactions.csv?type=&contact_id=&from=&to=
func (h *ReportHandler) ExportTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter: "+err.Error())
	}
	var buf bytes.Buffer
	if err := h.service.ExportTransactions(&buf, filter); err != nil {
		return fail(c, err)
	}
	return sendCSV(c, "transactions.csv", &buf)
}
