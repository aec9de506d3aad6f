package handlers

import (
	"fmt"
	"time"

	"pawnbook/internal/core/services"
	"pawnbook/internal/pkg/pagination"
	"pawnbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DayBookHandler handles daily cash book endpoints
type DayBookHandler struct {
	dayBook *services.DayBookService
	reports *services.ReportService
}

// NewDayBookHandler creates a new day book handler
func NewDayBookHandler(dayBook *services.DayBookService, reports *services.ReportService) *DayBookHandler {
	return &DayBookHandler{
		dayBook: dayBook,
		reports: reports,
	}
}

// dateRange reads the from/to query params as an inclusive calendar-day
// range. Missing params default to today, on the ledger's clock.
func dateRange(c *fiber.Ctx, now func() time.Time) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	from := c.Query("from")
	to := c.Query("to", from)

	if from == "" {
		n := now()
		day := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
		return day, day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}

	start, err := time.ParseInLocation(layout, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", from)
	}
	endDay, err := time.ParseInLocation(layout, to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", to)
	}
	end := endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date is before from date")
	}
	return start, end, nil
}

// GetDayBook handles the day book view
// @Summary Day book
// @Description Get money in/out totals and transactions for a date range (defaults to today)
// @Tags DayBook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /daybook [get]
func (h *DayBookHandler) GetDayBook(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.dayBook.Clock())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, "Day book retrieved successfully", h.dayBook.Range(start, end))
}

// ListTransactions handles the raw ledger listing
// @Summary List transactions
// @Description Get the transactions of a date range, newest first, paginated
// @Tags DayBook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /transactions [get]
func (h *DayBookHandler) ListTransactions(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.dayBook.Clock())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	params := pagination.GetParams(c)

	book := h.dayBook.Range(start, end)
	return response.Success(c, "Transactions retrieved successfully",
		pagination.Window(book.Transactions, params))
}

// ExportDayBook handles downloading the day book as a spreadsheet
// @Summary Export day book
// @Description Download the day book for a date range as XLSX or CSV
// @Tags DayBook
// @Accept json
// @Produce octet-stream
// @Security BearerAuth
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param format query string false "Export format (xlsx|csv)" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} response.Response
// @Router /daybook/export [get]
func (h *DayBookHandler) ExportDayBook(c *fiber.Ctx) error {
	start, end, err := dateRange(c, h.dayBook.Clock())
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	format := c.Query("format", "xlsx")
	switch format {
	case "xlsx":
		data, err := h.reports.XLSX(start, end)
		if err != nil {
			return response.InternalServerError(c, "Failed to build export")
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", h.reports.Filename("xlsx", start, end)))
		return c.Send(data)
	case "csv":
		data, err := h.reports.CSV(start, end)
		if err != nil {
			return response.InternalServerError(c, "Failed to build export")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", h.reports.Filename("csv", start, end)))
		return c.Send(data)
	default:
		return response.BadRequest(c, "Format must be xlsx or csv")
	}
}
