package handler

import (
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ContactHandler struct {
	service service.ContactService
}

func NewContactHandler(s service.ContactService) *ContactHandler {
	return &ContactHandler{service: s}
}

// GetContacts lists customers and vendors
// GET /api/v1/contacts?type=CUSTOMER|VENDOR
func (h *ContactHandler) GetContacts(c *fiber.Ctx) error {
	contacts, err := h.service.GetContacts(model.ContactType(c.Query("type")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contacts)
}

func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid contact ID")
	}
	contact, err := h.service.GetContact(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req service.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	contact, err := h.service.CreateContact(&req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Contact created", "data": contact})
}

func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid contact ID")
	}

	var req service.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	contact, err := h.service.UpdateContact(id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact updated", "data": contact})
}

func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid contact ID")
	}
	if err := h.service.DeleteContact(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Contact deleted"})
}
