package handlers

import (
	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/pagination"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrnamentHandler handles ornament catalog endpoints
type OrnamentHandler struct {
	ledger  *services.LedgerService
	queries *services.QueryService
}

// NewOrnamentHandler creates a new ornament handler
func NewOrnamentHandler(ledger *services.LedgerService, queries *services.QueryService) *OrnamentHandler {
	return &OrnamentHandler{
		ledger:  ledger,
		queries: queries,
	}
}

// ListOrnaments handles listing ornaments
// @Summary List ornaments
// @Description Get ornaments, optionally narrowed to one bill or to templates only
// @Tags Ornaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param billId query string false "Filter by external bill number"
// @Param template query bool false "Templates only"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /ornaments [get]
func (h *OrnamentHandler) ListOrnaments(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var ornaments []domain.Ornament
	switch {
	case c.QueryBool("template"):
		ornaments = h.queries.OrnamentTemplates()
	case c.Query("billId") != "":
		ornaments = h.queries.BillOrnaments(c.Query("billId"))
	default:
		ornaments = h.queries.Ornaments()
	}

	return response.Success(c, "Ornaments retrieved successfully", pagination.Window(ornaments, params))
}

// ListTemplates handles listing the ornament template catalog
// @Summary List ornament templates
// @Description Get the reusable ornament catalog entries
// @Tags Ornaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /ornaments/templates [get]
func (h *OrnamentHandler) ListTemplates(c *fiber.Ctx) error {
	return response.Success(c, "Templates retrieved successfully", fiber.Map{
		"templates": h.queries.OrnamentTemplates(),
	})
}

// CreateTemplate handles creating a catalog template
// @Summary Create ornament template
// @Description Add a reusable ornament catalog entry not tied to any bill
// @Tags Ornaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.OrnamentInput true "Template data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /ornaments/templates [post]
func (h *OrnamentHandler) CreateTemplate(c *fiber.Ctx) error {
	var input services.OrnamentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ornament, err := h.ledger.CreateOrnamentTemplate(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Template created successfully", fiber.Map{
		"ornament": ornament,
	})
}

// UpdateOrnament handles updating an ornament
// @Summary Update ornament
// @Description Update an ornament's details; weights are re-validated
// @Tags Ornaments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ornament ID"
// @Param body body services.UpdateOrnamentInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /ornaments/{id} [put]
func (h *OrnamentHandler) UpdateOrnament(c *fiber.Ctx) error {
	var input services.UpdateOrnamentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ornament, err := h.ledger.UpdateOrnament(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Ornament updated successfully", fiber.Map{
		"ornament": ornament,
	})
}
