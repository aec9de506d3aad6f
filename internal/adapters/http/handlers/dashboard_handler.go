package handlers

import (
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles the landing-page statistics endpoint
type DashboardHandler struct {
	dayBook *services.DayBookService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dayBook *services.DayBookService) *DashboardHandler {
	return &DashboardHandler{dayBook: dayBook}
}

// GetStats handles the dashboard snapshot
// @Summary Dashboard statistics
// @Description Get customer count, active bills, today's revenue and recent transactions
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	return response.Success(c, "Dashboard retrieved successfully", h.dayBook.Stats())
}
