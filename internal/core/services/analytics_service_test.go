package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
)

func TestCustomerAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")

	gold := f.bill(t, c.ID, "B-1", 10000,
		services.OrnamentInput{Name: "Gold Chain", Type: "gold", GrossWeight: 10, NetWeight: 9},
		services.OrnamentInput{Name: "Gold Chain", Type: "gold", GrossWeight: 12, NetWeight: 11},
	)
	f.bill(t, c.ID, "B-2", 5000,
		services.OrnamentInput{Name: "Silver Ring", Type: "silver", GrossWeight: 6, NetWeight: 5},
	)

	f.clock.Advance(time.Second)
	_, err := f.ledger.RecordInterestPayment(ctx, gold.ID, &services.PaymentInput{Amount: 200})
	require.NoError(t, err)

	got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{})
	require.NoError(t, err)

	assert.Equal(t, "Asha", got.Customer.Name)
	assert.Equal(t, 15000.0, got.TotalAmount)
	assert.Equal(t, 2, got.BillCount)
	assert.Equal(t, 2, got.ActiveLoans)
	assert.Len(t, got.Transactions, 3)

	require.Len(t, got.OrnamentDist, 2)
	assert.Equal(t, services.CountItem{Name: "Gold Chain", Value: 2}, got.OrnamentDist[0])
	assert.Equal(t, services.CountItem{Name: "Silver Ring", Value: 1}, got.OrnamentDist[1])

	require.Len(t, got.MetalDist, 2)
	assert.Equal(t, services.CountItem{Name: "Gold", Value: 2}, got.MetalDist[0])
	assert.Equal(t, services.CountItem{Name: "Silver", Value: 1}, got.MetalDist[1])
}

func TestAnalyticsUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.analytics.ForCustomer("missing", services.AnalyticsFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsBillFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")

	b1 := f.bill(t, c.ID, "B-1", 3000)
	f.bill(t, c.ID, "B-2", 1000)
	f.bill(t, c.ID, "B-3", 2000)

	f.clock.Advance(time.Second)
	_, err := f.ledger.ReleaseBill(ctx, b1.ID, &services.ReleaseInput{ReleaseImage: "img"})
	require.NoError(t, err)

	t.Run("by status", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{Status: "released"})
		require.NoError(t, err)
		require.Len(t, got.Bills, 1)
		assert.Equal(t, "B-1", got.Bills[0].BillID)
		assert.Zero(t, got.ActiveLoans)
	})

	t.Run("by bill number", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{BillID: "B-2"})
		require.NoError(t, err)
		require.Len(t, got.Bills, 1)
		assert.Equal(t, 1000.0, got.TotalAmount)
	})

	t.Run("sort by amount ascending", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{SortBy: "amount", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, got.Bills, 3)
		assert.Equal(t, 1000.0, got.Bills[0].Amount)
		assert.Equal(t, 3000.0, got.Bills[2].Amount)
	})

	t.Run("default sort is newest first", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{})
		require.NoError(t, err)
		require.Len(t, got.Bills, 3)
		assert.Equal(t, "B-3", got.Bills[0].BillID)
		assert.Equal(t, "B-1", got.Bills[2].BillID)
	})
}

func TestAnalyticsTwoHopFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")

	goldBill := f.bill(t, c.ID, "B-1", 10000,
		services.OrnamentInput{Name: "Gold Chain", Type: "gold", GrossWeight: 10, NetWeight: 9},
	)
	silverBill := f.bill(t, c.ID, "B-2", 5000,
		services.OrnamentInput{Name: "Silver Anklet", Type: "silver", GrossWeight: 20, NetWeight: 18},
	)

	f.clock.Advance(time.Second)
	_, err := f.ledger.RecordInterestPayment(ctx, goldBill.ID, &services.PaymentInput{Amount: 200})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.ledger.RecordInterestPayment(ctx, silverBill.ID, &services.PaymentInput{Amount: 100})
	require.NoError(t, err)

	t.Run("metal filter", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{MetalType: "gold"})
		require.NoError(t, err)
		require.Len(t, got.Transactions, 2)
		for _, tx := range got.Transactions {
			assert.Equal(t, "B-1", tx.BillID)
		}
	})

	t.Run("ornament name filter is a case-insensitive substring", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{OrnamentName: "anklet"})
		require.NoError(t, err)
		require.Len(t, got.Transactions, 2)
		for _, tx := range got.Transactions {
			assert.Equal(t, "B-2", tx.BillID)
		}
	})

	t.Run("no match", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{OrnamentName: "bangle"})
		require.NoError(t, err)
		assert.Empty(t, got.Transactions)
	})
}

func TestAnalyticsDateFiltersAndTimeline(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Asha")

	// One 100-rupee entry per month across fourteen months.
	start := time.Date(2023, 5, 10, 12, 0, 0, 0, time.Local)
	for i := 0; i < 14; i++ {
		appendAt(t, f, start.AddDate(0, i, 0), domain.Transaction{
			BillID:      "B-1",
			CustomerID:  c.ID,
			Type:        domain.TxInterestPaid,
			Amount:      100,
			Description: fmt.Sprintf("Interest payment for Bill #%s", "B-1"),
		})
	}

	t.Run("year filter", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{Year: 2023})
		require.NoError(t, err)
		assert.Len(t, got.Transactions, 8) // May through December
	})

	t.Run("year and month filter", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{Year: 2024, Month: 3})
		require.NoError(t, err)
		require.Len(t, got.Transactions, 1)
		assert.Equal(t, time.March, got.Transactions[0].Date.Month())
	})

	t.Run("timeline keeps the most recent twelve months", func(t *testing.T) {
		got, err := f.analytics.ForCustomer(c.ID, services.AnalyticsFilter{})
		require.NoError(t, err)
		require.Len(t, got.Timeline, 12)
		assert.Equal(t, "Jul 2023", got.Timeline[0].Month)
		assert.Equal(t, "Jun 2024", got.Timeline[11].Month)
		for _, p := range got.Timeline {
			assert.Equal(t, 100.0, p.Amount)
		}
	})
}
