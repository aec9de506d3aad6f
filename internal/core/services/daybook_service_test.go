package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
)

func TestDayBookRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-1", 10000)

	f.clock.Advance(time.Minute)
	_, err := f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 200})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.ledger.RecordExtraPayment(ctx, bill.ID, &services.PaymentInput{Amount: 300})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.ledger.ReleaseBill(ctx, bill.ID, &services.ReleaseInput{ReleaseImage: "img"})
	require.NoError(t, err)

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	book := f.dayBook.Range(day, day.AddDate(0, 0, 1).Add(-time.Nanosecond))

	assert.Equal(t, 500.0, book.TotalIn)
	assert.Equal(t, 2, book.InCount)
	assert.Equal(t, 10000.0, book.TotalOut)
	assert.Equal(t, 1, book.OutCount)
	assert.Len(t, book.Transactions, 4)

	// One row per bill, the most recent entry wins.
	require.Len(t, book.LatestByBill, 1)
	assert.Equal(t, domain.TxBillReleased, book.LatestByBill[0].Type)
}

func TestDayBookToday(t *testing.T) {
	f := newFixture(t)

	appendAt(t, f, time.Date(2024, 6, 14, 16, 0, 0, 0, time.Local),
		domain.Transaction{BillID: "B-1", Type: domain.TxInterestPaid, Amount: 100})
	appendAt(t, f, time.Date(2024, 6, 15, 9, 0, 0, 0, time.Local),
		domain.Transaction{BillID: "B-2", Type: domain.TxInterestPaid, Amount: 250})

	f.clock.Set(time.Date(2024, 6, 15, 18, 0, 0, 0, time.Local))
	book := f.dayBook.Today()

	assert.Equal(t, 250.0, book.TotalIn)
	require.Len(t, book.Transactions, 1)
	assert.Equal(t, "B-2", book.Transactions[0].BillID)
}

func TestAccountSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	a := f.account(t, "Shop Cash")

	billInput := &services.CreateBillInput{
		BillID:       "B-1",
		CustomerID:   c.ID,
		Amount:       10000,
		InterestRate: 2,
		Ornaments: []services.OrnamentInput{
			{Name: "Gold Chain", Type: "gold", GrossWeight: 10, NetWeight: 9},
		},
	}
	f.clock.Advance(time.Second)
	bill, _, err := f.ledger.CreateBill(ctx, billInput)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 200, AccountID: a.ID})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.ledger.ReleaseBill(ctx, bill.ID, &services.ReleaseInput{ReleaseImage: "img", AccountID: a.ID})
	require.NoError(t, err)

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	dayEnd := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	summary, err := f.dayBook.ForAccount(a.ID, day, dayEnd)
	require.NoError(t, err)

	// Collected is settled principal; interest received through the account
	// counts as disbursed in the account view.
	assert.Equal(t, 10000.0, summary.TotalCollected)
	assert.Equal(t, 200.0, summary.TotalDisbursed)
	assert.Equal(t, 10200.0, summary.Balance)
	assert.Len(t, summary.Transactions, 2)

	t.Run("window excludes other days", func(t *testing.T) {
		nextDay := day.AddDate(0, 0, 1)
		empty, err := f.dayBook.ForAccount(a.ID, nextDay, nextDay.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Zero(t, empty.TotalCollected)
		assert.Zero(t, empty.TotalDisbursed)
		assert.Empty(t, empty.Transactions)
		// The derived balance ignores the window.
		assert.Equal(t, 10200.0, empty.Balance)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.dayBook.ForAccount("missing", day, dayEnd)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	f.customer(t, "Lakshmi")

	active := f.bill(t, c.ID, "B-1", 10000)
	released := f.bill(t, c.ID, "B-2", 5000)

	f.clock.Advance(time.Second)
	_, err := f.ledger.ReleaseBill(ctx, released.ID, &services.ReleaseInput{ReleaseImage: "img"})
	require.NoError(t, err)

	// Seven payments today; only five show up under recent.
	for i := 0; i < 7; i++ {
		f.clock.Advance(time.Second)
		_, err := f.ledger.RecordInterestPayment(ctx, active.ID, &services.PaymentInput{Amount: 100})
		require.NoError(t, err)
	}

	stats := f.dayBook.Stats()

	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 1, stats.ActiveBills)
	// Every amount moved today counts: two bills created (10000 + 5000),
	// one release (5000) and seven interest payments (700).
	assert.Equal(t, 20700.0, stats.TodayRevenue)
	assert.Equal(t, 10, stats.TodayTransactions)

	require.Len(t, stats.Recent, 5)
	for i := 1; i < len(stats.Recent); i++ {
		assert.False(t, stats.Recent[i].Date.After(stats.Recent[i-1].Date))
	}
}
