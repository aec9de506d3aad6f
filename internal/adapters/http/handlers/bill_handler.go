package handlers

import (
	"strings"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/pagination"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BillHandler handles bill lifecycle endpoints
type BillHandler struct {
	ledger  *services.LedgerService
	queries *services.QueryService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(ledger *services.LedgerService, queries *services.QueryService) *BillHandler {
	return &BillHandler{
		ledger:  ledger,
		queries: queries,
	}
}

// ListBills handles listing bills
// @Summary List bills
// @Description Get a paginated list of bills, optionally filtered by status
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (active|released|cleared)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /bills [get]
func (h *BillHandler) ListBills(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	bills := h.queries.Bills()

	if status := strings.ToLower(c.Query("status")); status != "" {
		if !domain.BillStatus(status).Valid() {
			return response.BadRequest(c, "Status must be active, released or cleared")
		}
		filtered := bills[:0:0]
		for _, b := range bills {
			if b.Status == domain.BillStatus(status) {
				filtered = append(filtered, b)
			}
		}
		bills = filtered
	}

	return response.Success(c, "Bills retrieved successfully", pagination.Window(bills, params))
}

// CreateBill handles creating a bill with its ornaments
// @Summary Create bill
// @Description Create a bill with pledged ornaments; records a bill_created ledger entry
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBillInput true "Bill data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills [post]
func (h *BillHandler) CreateBill(c *fiber.Ctx) error {
	var input services.CreateBillInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	bill, ornaments, err := h.ledger.CreateBill(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Bill created successfully", fiber.Map{
		"bill":      bill,
		"ornaments": ornaments,
	})
}

// GetBill handles getting a bill with its ornaments
// @Summary Get bill
// @Description Get a bill, its pledged ornaments and total due
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id} [get]
func (h *BillHandler) GetBill(c *fiber.Ctx) error {
	bill, err := h.queries.Bill(c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Bill retrieved successfully", fiber.Map{
		"bill":      bill,
		"ornaments": h.queries.BillOrnaments(bill.BillID),
		"totalDue":  bill.TotalDue(),
	})
}

// GetBillOrnaments handles listing a bill's pledged ornaments
// @Summary List bill ornaments
// @Description Get the pledged ornaments attached to a bill, in insertion order
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id}/ornaments [get]
func (h *BillHandler) GetBillOrnaments(c *fiber.Ctx) error {
	bill, err := h.queries.Bill(c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Ornaments retrieved successfully", fiber.Map{
		"ornaments": h.queries.BillOrnaments(bill.BillID),
	})
}

// UpdateBill handles updating bill fields
// @Summary Update bill
// @Description Update bill number, amount or interest rate; financial changes are logged to the ledger
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Param body body services.UpdateBillInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bills/{id} [put]
func (h *BillHandler) UpdateBill(c *fiber.Ctx) error {
	var input services.UpdateBillInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	bill, err := h.ledger.UpdateBill(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Bill updated successfully", fiber.Map{
		"bill": bill,
	})
}

// PayInterest handles recording an interest payment
// @Summary Record interest payment
// @Description Record an interest payment on an active bill
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Param body body services.PaymentInput true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bills/{id}/interest [post]
func (h *BillHandler) PayInterest(c *fiber.Ctx) error {
	var input services.PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	bill, err := h.ledger.RecordInterestPayment(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Interest payment recorded", fiber.Map{
		"bill":     bill,
		"totalDue": bill.TotalDue(),
	})
}

// PayExtra handles recording a principal repayment
// @Summary Record extra payment
// @Description Record a partial principal repayment on an active bill
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Param body body services.PaymentInput true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bills/{id}/extra [post]
func (h *BillHandler) PayExtra(c *fiber.Ctx) error {
	var input services.PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	bill, err := h.ledger.RecordExtraPayment(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Extra payment recorded", fiber.Map{
		"bill":     bill,
		"totalDue": bill.TotalDue(),
	})
}

// ReleaseBill handles releasing a bill
// @Summary Release bill
// @Description Release an active bill; requires a handover photograph
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Param body body services.ReleaseInput true "Release data"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bills/{id}/release [post]
func (h *BillHandler) ReleaseBill(c *fiber.Ctx) error {
	var input services.ReleaseInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	bill, err := h.ledger.ReleaseBill(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Bill released successfully", fiber.Map{
		"bill": bill,
	})
}

// ClearBill handles clearing a released bill
// @Summary Clear bill
// @Description Move a released bill to its terminal cleared state
// @Tags Bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bill record ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bills/{id}/clear [post]
func (h *BillHandler) ClearBill(c *fiber.Ctx) error {
	bill, err := h.ledger.ClearBill(c.Context(), c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Bill cleared successfully", fiber.Map{
		"bill": bill,
	})
}
