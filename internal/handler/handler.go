package handler

import (
	"errors"

	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/service"
	"autoparts-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actor reads the caller set by the auth middleware
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{ID: "system", Name: "Unknown"}
	if v, ok := c.Locals("user_id").(string); ok {
		a.ID = v
	}
	if v, ok := c.Locals("user_name").(string); ok {
		a.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		a.Email = v
	}
	return a
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

var (
	notFoundErrors = []error{
		service.ErrProductNotFound,
		service.ErrCategoryNotFound,
		service.ErrContactNotFound,
		service.ErrTransactionNotFound,
		service.ErrUserNotFound,
		service.ErrRoleNotFound,
	}
	conflictErrors = []error{
		service.ErrSKUExists,
		service.ErrCategoryExists,
		service.ErrCategoryInUse,
		service.ErrEmailExists,
		service.ErrStockWouldGoNegative,
		service.ErrLastMasterAdmin,
		ledger.ErrOutOfStock,
	}
	unprocessableErrors = []error{
		service.ErrContactTypeMismatch,
		service.ErrTypeImmutable,
		service.ErrNoItems,
		service.ErrUnknownPrivileges,
		service.ErrInvalidRange,
		service.ErrTooManyDecimals,
		ledger.ErrEmptyCatalog,
		ledger.ErrLineNotFound,
		ledger.ErrProductNotFound,
		ledger.ErrInvalidQuantity,
		ledger.ErrInvalidVAT,
		ledger.ErrInvalidDocumentType,
		ledger.ErrInvalidField,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail maps service errors to a status and JSON body
func fail(c *fiber.Ctx, err error) error {
	var stock *ledger.InsufficientStockError
	if errors.As(err, &stock) {
		body := fiber.Map{
			"error":      err.Error(),
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		}
		var line *service.LineError
		if errors.As(err, &line) {
			body["line"] = line.Index
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	}

	switch {
	case errors.Is(err, validator.ErrValidation):
		return badRequest(c, err.Error())
	case isAny(err, notFoundErrors):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case isAny(err, conflictErrors):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case isAny(err, unprocessableErrors):
		body := fiber.Map{"error": err.Error()}
		var line *service.LineError
		if errors.As(err, &line) {
			body["line"] = line.Index
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}
