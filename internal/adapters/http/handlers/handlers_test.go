package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCtx routes a GET request through fiber so query helpers can be
// exercised against a real request context.
func runCtx(t *testing.T, target string, fn func(c *fiber.Ctx)) {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		fn(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
}

func TestDateRangeDefaultsToLedgerClock(t *testing.T) {
	frozen := time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)

	runCtx(t, "/", func(c *fiber.Ctx) {
		start, end, err := dateRange(c, func() time.Time { return frozen })
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local), start)
		assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.Local).Add(-time.Nanosecond), end)
	})
}

func TestDateRangeExplicitWindow(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local) }

	t.Run("from and to", func(t *testing.T) {
		runCtx(t, "/?from=2024-01-10&to=2024-01-12", func(c *fiber.Ctx) {
			start, end, err := dateRange(c, now)
			require.NoError(t, err)

			assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local), start)
			assert.Equal(t, time.Date(2024, 1, 13, 0, 0, 0, 0, time.Local).Add(-time.Nanosecond), end)
		})
	})

	t.Run("to before from", func(t *testing.T) {
		runCtx(t, "/?from=2024-01-12&to=2024-01-10", func(c *fiber.Ctx) {
			_, _, err := dateRange(c, now)
			assert.Error(t, err)
		})
	})

	t.Run("malformed date", func(t *testing.T) {
		runCtx(t, "/?from=12-01-2024", func(c *fiber.Ctx) {
			_, _, err := dateRange(c, now)
			assert.Error(t, err)
		})
	})
}

func TestAnalyticsFilterMonthValidation(t *testing.T) {
	runCtx(t, "/?month=13", func(c *fiber.Ctx) {
		_, err := analyticsFilter(c)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	runCtx(t, "/?year=2024&month=3&metal=Gold", func(c *fiber.Ctx) {
		filter, err := analyticsFilter(c)
		require.NoError(t, err)

		assert.Equal(t, services.AnalyticsFilter{
			Year:      2024,
			Month:     3,
			MetalType: "gold",
			SortBy:    "date",
			SortOrder: "desc",
		}, filter)
	})
}
