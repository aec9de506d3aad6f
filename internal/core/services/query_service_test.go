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

// appendAt writes a raw ledger entry with the clock pinned to a moment.
func appendAt(t *testing.T, f *fixture, at time.Time, tx domain.Transaction) domain.Transaction {
	t.Helper()
	f.clock.Set(at)
	out, err := f.store.AppendTransaction(context.Background(), tx)
	require.NoError(t, err)
	return out
}

func TestTransactionsByDateRange(t *testing.T) {
	f := newFixture(t)

	day := func(d int, hour int) time.Time {
		return time.Date(2024, 6, d, hour, 0, 0, 0, time.Local)
	}
	appendAt(t, f, day(10, 9), domain.Transaction{BillID: "B-1", Type: domain.TxBillCreated, Amount: 1000})
	appendAt(t, f, day(11, 9), domain.Transaction{BillID: "B-2", Type: domain.TxBillCreated, Amount: 2000})
	appendAt(t, f, day(12, 9), domain.Transaction{BillID: "B-3", Type: domain.TxBillCreated, Amount: 3000})
	appendAt(t, f, day(13, 9), domain.Transaction{BillID: "B-4", Type: domain.TxBillCreated, Amount: 4000})

	t.Run("inclusive both ends", func(t *testing.T) {
		got := f.queries.TransactionsByDateRange(day(11, 9), day(12, 9))
		require.Len(t, got, 2)
	})

	t.Run("newest first", func(t *testing.T) {
		got := f.queries.TransactionsByDateRange(day(10, 0), day(13, 23))
		require.Len(t, got, 4)
		assert.Equal(t, "B-4", got[0].BillID)
		assert.Equal(t, "B-1", got[3].BillID)
	})

	t.Run("empty range", func(t *testing.T) {
		got := f.queries.TransactionsByDateRange(day(1, 0), day(9, 23))
		assert.Empty(t, got)
	})
}

func TestTodayTransactionsMidnightBoundary(t *testing.T) {
	f := newFixture(t)

	lateYesterday := time.Date(2024, 6, 14, 23, 59, 59, 0, time.Local)
	earlyToday := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	appendAt(t, f, lateYesterday, domain.Transaction{BillID: "B-1", Type: domain.TxInterestPaid, Amount: 100})
	appendAt(t, f, earlyToday, domain.Transaction{BillID: "B-2", Type: domain.TxInterestPaid, Amount: 200})

	f.clock.Set(time.Date(2024, 6, 15, 18, 30, 0, 0, time.Local))
	got := f.queries.TodayTransactions()
	require.Len(t, got, 1)
	assert.Equal(t, "B-2", got[0].BillID)
}

func TestAccountBalanceDerivation(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, "Shop Cash")

	at := f.clock.Read()
	appendAt(t, f, at.Add(time.Minute), domain.Transaction{BillID: "B-1", Type: domain.TxBillCreated, Amount: 10000, AccountID: a.ID})
	appendAt(t, f, at.Add(2*time.Minute), domain.Transaction{BillID: "B-1", Type: domain.TxInterestPaid, Amount: 200, AccountID: a.ID})
	appendAt(t, f, at.Add(3*time.Minute), domain.Transaction{BillID: "B-1", Type: domain.TxExtraAmount, Amount: 300, AccountID: a.ID})
	appendAt(t, f, at.Add(4*time.Minute), domain.Transaction{BillID: "B-1", Type: domain.TxBillReleased, Amount: 9700, AccountID: a.ID})
	// State changes with no cash movement never touch the balance.
	appendAt(t, f, at.Add(5*time.Minute), domain.Transaction{BillID: "B-1", Type: domain.TxBillCleared, Amount: 9700, AccountID: a.ID})
	// Entries on other accounts are excluded entirely.
	appendAt(t, f, at.Add(6*time.Minute), domain.Transaction{BillID: "B-2", Type: domain.TxInterestPaid, Amount: 500, AccountID: "other"})

	assert.Equal(t, 200.0, f.queries.AccountBalance(a.ID))
	assert.Len(t, f.queries.AccountTransactions(a.ID), 5)
}

func TestBillOrnamentsAndTemplatesAreSeparate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	f.bill(t, c.ID, "B-101", 10000)

	_, err := f.ledger.CreateOrnamentTemplate(ctx, &services.OrnamentInput{
		Name:        "Gold Ring",
		Type:        "gold",
		GrossWeight: 5,
		NetWeight:   4.5,
	})
	require.NoError(t, err)

	pledged := f.queries.BillOrnaments("B-101")
	require.Len(t, pledged, 1)
	assert.Equal(t, "Gold Chain", pledged[0].Name)

	templates := f.queries.OrnamentTemplates()
	require.Len(t, templates, 1)
	assert.True(t, templates[0].IsTemplate())

	assert.Empty(t, f.queries.BillOrnaments("no-such-bill"))
}

func TestCustomerBills(t *testing.T) {
	f := newFixture(t)
	a := f.customer(t, "Asha")
	b := f.customer(t, "Lakshmi")
	f.bill(t, a.ID, "B-1", 1000)
	f.bill(t, b.ID, "B-2", 2000)
	f.bill(t, a.ID, "B-3", 3000)

	bills := f.queries.CustomerBills(a.ID)
	require.Len(t, bills, 2)
	assert.Equal(t, "B-1", bills[0].BillID)
	assert.Equal(t, "B-3", bills[1].BillID)
}
