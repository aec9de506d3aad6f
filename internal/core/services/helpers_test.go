package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pawnbook/internal/adapters/persistence/kv"
	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
)

// testClock is a manually driven time source. Tests advance it between
// mutations so every record carries a distinct, ordered timestamp.
type testClock struct {
	now time.Time
}

func (c *testClock) Read() time.Time { return c.now }

func (c *testClock) Set(t time.Time) { c.now = t }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fixture wires the mutation and read services over a file-backed store.
type fixture struct {
	clock     *testClock
	store     *store.Store
	ledger    *services.LedgerService
	queries   *services.QueryService
	analytics *services.AnalyticsService
	dayBook   *services.DayBookService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)}

	medium, err := kv.NewFileStore(t.TempDir())
	require.NoError(t, err)
	st, err := store.Open(context.Background(), medium, store.Config{Now: clock.Read})
	require.NoError(t, err)

	queries := services.NewQueryService(st)
	return &fixture{
		clock:     clock,
		store:     st,
		ledger:    services.NewLedgerService(st, zap.NewNop()),
		queries:   queries,
		analytics: services.NewAnalyticsService(st, queries),
		dayBook:   services.NewDayBookService(st, queries),
	}
}

func (f *fixture) customer(t *testing.T, name string) *domain.Customer {
	t.Helper()
	f.clock.Advance(time.Second)
	c, err := f.ledger.CreateCustomer(context.Background(), &services.CreateCustomerInput{
		Name:                 name,
		Village:              "Kondapur",
		PhoneNumber:          "9876543210",
		FatherHusbandName:    "Raju",
		FatherHusbandVillage: "Kondapur",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) bill(t *testing.T, customerID, billID string, amount float64, ornaments ...services.OrnamentInput) *domain.Bill {
	t.Helper()
	if len(ornaments) == 0 {
		ornaments = []services.OrnamentInput{
			{Name: "Gold Chain", Type: "gold", GrossWeight: 10, NetWeight: 9},
		}
	}
	f.clock.Advance(time.Second)
	b, _, err := f.ledger.CreateBill(context.Background(), &services.CreateBillInput{
		BillID:       billID,
		CustomerID:   customerID,
		Amount:       amount,
		InterestRate: 2,
		Ornaments:    ornaments,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) account(t *testing.T, name string) *domain.Account {
	t.Helper()
	f.clock.Advance(time.Second)
	a, err := f.ledger.CreateAccount(context.Background(), &services.CreateAccountInput{
		Name: name,
		Type: "cash",
	})
	require.NoError(t, err)
	return a
}
