package handler

import (
	"bytes"
	"time"

	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type TransactionHandler struct {
	service  service.TransactionService
	invoices service.InvoiceService
}

func NewTransactionHandler(s service.TransactionService, invoices service.InvoiceService) *TransactionHandler {
	return &TransactionHandler{service: s, invoices: invoices}
}

// transactionFilter reads type, contact_id, from and to. Dates are
// YYYY-MM-DD and the to day is included.
func transactionFilter(c *fiber.Ctx) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{Type: model.TransactionType(c.Query("type"))}
	if raw := c.Query("contact_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.ContactID = &id
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, err
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	return filter, nil
}

// GetTransactions lists documents, newest first
// GET /api/v1/transactions?type=&contact_id=&from=&to=
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter, err := transactionFilter(c)
	if err != nil {
		return badRequest(c, "Invalid filter: "+err.Error())
	}
	transactions, err := h.service.GetTransactions(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid transaction ID")
	}
	transaction, err := h.service.GetTransaction(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(transaction)
}

// PreviewTransaction runs admission and totals without saving. With
// ?replacing=<id> the stock of that document is counted as available.
// POST /api/v1/transactions/preview
func (h *TransactionHandler) PreviewTransaction(c *fiber.Ctx) error {
	var req service.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	var replacing *uuid.UUID
	if raw := c.Query("replacing"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid transaction ID")
		}
		replacing = &id
	}

	preview, err := h.service.PreviewTransaction(&req, replacing)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(preview)
}

// EditLines applies one add, update or remove to the lines on screen and
// returns the new lines and totals. Nothing is stored.
// POST /api/v1/transactions/lines
func (h *TransactionHandler) EditLines(c *fiber.Ctx) error {
	var req service.LineEditRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	preview, err := h.service.EditLines(&req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(preview)
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	transaction, err := h.service.CreateTransaction(&req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": transaction})
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid transaction ID")
	}

	var req service.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	transaction, err := h.service.UpdateTransaction(id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": transaction})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid transaction ID")
	}
	if err := h.service.DeleteTransaction(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

// GetInvoice renders the document as a PDF download
// GET /api/v1/transactions/:id/invoice.pdf
func (h *TransactionHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid transaction ID")
	}

	var buf bytes.Buffer
	name, err := h.invoices.RenderInvoice(id, &buf)
	if err != nil {
		return fail(c, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}
