package handler

import (
	"autoparts-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: range (7d, 1m, 3m, 6m, 12m; default 7d)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	rangeKey := c.Query("range", "7d")
	data, err := h.service.GetStockMovement(rangeKey)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"range": rangeKey,
		"data":  data,
	})
}

// GetDashboardStats returns catalog and financial overview for a range
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.Query("range", "7d"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}
