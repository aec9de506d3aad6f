package handlers

import (
	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/pagination"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles cash and bank account endpoints
type AccountHandler struct {
	ledger  *services.LedgerService
	queries *services.QueryService
	dayBook *services.DayBookService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledger *services.LedgerService, queries *services.QueryService, dayBook *services.DayBookService) *AccountHandler {
	return &AccountHandler{
		ledger:  ledger,
		queries: queries,
		dayBook: dayBook,
	}
}

// ListAccounts handles listing accounts with their derived balances
// @Summary List accounts
// @Description Get all accounts; balances are derived from the transaction ledger
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	accounts := h.queries.Accounts()

	out := make([]fiber.Map, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, fiber.Map{
			"account": a,
			"balance": h.queries.AccountBalance(a.ID),
		})
	}

	return response.Success(c, "Accounts retrieved successfully", fiber.Map{
		"accounts": out,
	})
}

// CreateAccount handles creating an account
// @Summary Create account
// @Description Create a cash or bank account
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAccountInput true "Account data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var input services.CreateAccountInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	account, err := h.ledger.CreateAccount(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Created(c, "Account created successfully", fiber.Map{
		"account": account,
	})
}

// GetAccount handles getting one account with its ledger summary
// @Summary Get account
// @Description Get an account with its windowed transactions, collected and disbursed totals
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param from query string false "Start date (YYYY-MM-DD), defaults to today"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id := c.Params("id")

	account, err := h.queries.Account(id)
	if err != nil {
		return response.DomainError(c, err)
	}

	start, end, err := dateRange(c, h.dayBook.Clock())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	summary, err := h.dayBook.ForAccount(id, start, end)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Account retrieved successfully", fiber.Map{
		"account": account,
		"summary": summary,
	})
}

// GetAccountTransactions handles listing an account's ledger entries
// @Summary List account transactions
// @Description Get the transactions linked to an account with its derived balance
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id}/transactions [get]
func (h *AccountHandler) GetAccountTransactions(c *fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.queries.Account(id); err != nil {
		return response.DomainError(c, err)
	}
	params := pagination.GetParams(c)

	return response.Success(c, "Transactions retrieved successfully", fiber.Map{
		"balance":      h.queries.AccountBalance(id),
		"transactions": pagination.Window(h.queries.AccountTransactions(id), params),
	})
}

// UpdateAccount handles renaming an account
// @Summary Update account
// @Description Update an account's name or type
// @Tags Accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param body body services.UpdateAccountInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	var input services.UpdateAccountInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	account, err := h.ledger.UpdateAccount(c.Context(), c.Params("id"), &input)
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "Account updated successfully", fiber.Map{
		"account": account,
	})
}
