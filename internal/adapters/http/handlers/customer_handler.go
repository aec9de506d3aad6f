package handlers

import (
	"strconv"
	"strings"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/pagination"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	ledger    *services.LedgerService
	queries   *services.QueryService
	analytics *services.AnalyticsService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(ledger *services.LedgerService, queries *services.QueryService, analytics *services.AnalyticsService) *CustomerHandler {
	return &CustomerHandler{
		ledger:    ledger,
		queries:   queries,
		analytics: analytics,
	}
}

// ListCustomers handles listing customers
// @Summary List customers
// @Description Get a paginated list of customers in insertion order
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Match against name, village or phone number"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	customers := h.queries.Customers()

	if search := strings.ToLower(strings.TrimSpace(c.Query("search"))); search != "" {
		filtered := customers[:0:0]
		for _, cust := range customers {
			if strings.Contains(strings.ToLower(cust.Name), search) ||
				strings.Contains(strings.ToLower(cust.Village), search) ||
				strings.Contains(cust.PhoneNumber, search) {
				filtered = append(filtered, cust)
			}
		}
		customers = filtered
	}

	return response.Success(c, "Customers retrieved successfully", pagination.Window(customers, params))
}

// CreateCustomer handles creating a customer
// @Summary Create customer
// @Description Register a new customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCustomerInput true "Customer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var input services.CreateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.ledger.CreateCustomer(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Customer created successfully", fiber.Map{
		"customer": customer,
	})
}

// GetCustomer handles getting a customer by ID
// @Summary Get customer
// @Description Get a customer with their bills
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id := c.Params("id")

	customer, err := h.queries.Customer(id)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Customer retrieved successfully", fiber.Map{
		"customer": customer,
		"bills":    h.queries.CustomerBills(id),
	})
}

// UpdateCustomer handles updating a customer
// @Summary Update customer
// @Description Update customer details. Historical bills keep the old name.
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param body body services.UpdateCustomerInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id := c.Params("id")

	var input services.UpdateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.ledger.UpdateCustomer(c.Context(), id, &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Customer updated successfully", fiber.Map{
		"customer": customer,
	})
}

// GetCustomerBills handles listing a customer's bills
// @Summary List customer bills
// @Description Get all bills for a customer in insertion order
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} response.Response
// @Router /customers/{id}/bills [get]
func (h *CustomerHandler) GetCustomerBills(c *fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.queries.Customer(id); err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Bills retrieved successfully", fiber.Map{
		"bills": h.queries.CustomerBills(id),
	})
}

// GetCustomerAnalytics handles the customer analytics view
// @Summary Customer analytics
// @Description Get filtered bills, transactions, distributions and timeline for a customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param year query int false "Filter transactions by year"
// @Param month query int false "Filter transactions by month (1-12)"
// @Param metal query string false "Filter by ornament metal (gold|silver)"
// @Param ornament query string false "Filter by ornament name substring"
// @Param billId query string false "Filter bills by external bill number"
// @Param status query string false "Filter bills by status"
// @Param sortBy query string false "Bill sort field (date|amount)" default(date)
// @Param sortOrder query string false "Bill sort order (asc|desc)" default(desc)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/analytics [get]
func (h *CustomerHandler) GetCustomerAnalytics(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return response.DomainError(c, err)
	}

	result, err := h.analytics.ForCustomer(c.Params("id"), filter)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Analytics retrieved successfully", result)
}

// GetCustomerTransactions handles the filtered transaction history view
// @Summary Customer transactions
// @Description Get a customer's transactions, newest first, with the analytics filters applied
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param year query int false "Filter by year"
// @Param month query int false "Filter by month (1-12)"
// @Param metal query string false "Filter by ornament metal (gold|silver)"
// @Param ornament query string false "Filter by ornament name substring"
// @Param billId query string false "Filter by external bill number"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/transactions [get]
func (h *CustomerHandler) GetCustomerTransactions(c *fiber.Ctx) error {
	filter, err := analyticsFilter(c)
	if err != nil {
		return response.DomainError(c, err)
	}
	params := pagination.GetParams(c)

	result, err := h.analytics.ForCustomer(c.Params("id"), filter)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Transactions retrieved successfully",
		pagination.Window(result.Transactions, params))
}

func analyticsFilter(c *fiber.Ctx) (services.AnalyticsFilter, error) {
	year, _ := strconv.Atoi(c.Query("year", "0"))
	month, _ := strconv.Atoi(c.Query("month", "0"))
	if month < 0 || month > 12 {
		return services.AnalyticsFilter{}, domain.Invalid("month", "must be between 1 and 12")
	}

	return services.AnalyticsFilter{
		Year:         year,
		Month:        month,
		MetalType:    strings.ToLower(c.Query("metal")),
		OrnamentName: c.Query("ornament"),
		BillID:       c.Query("billId"),
		Status:       strings.ToLower(c.Query("status")),
		SortBy:       c.Query("sortBy", "date"),
		SortOrder:    c.Query("sortOrder", "desc"),
	}, nil
}
