package services_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawnbook/internal/core/domain"
	"pawnbook/internal/core/services"
)

func TestCreateCustomerValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("missing name", func(t *testing.T) {
		_, err := f.ledger.CreateCustomer(ctx, &services.CreateCustomerInput{
			Village:              "Kondapur",
			PhoneNumber:          "9876543210",
			FatherHusbandName:    "Raju",
			FatherHusbandVillage: "Kondapur",
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("bad email", func(t *testing.T) {
		_, err := f.ledger.CreateCustomer(ctx, &services.CreateCustomerInput{
			Name:                 "Asha",
			Village:              "Kondapur",
			PhoneNumber:          "9876543210",
			FatherHusbandName:    "Raju",
			FatherHusbandVillage: "Kondapur",
			Email:                "not-an-email",
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestCreateBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")

	bill, ornaments, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
		BillID:       "B-101",
		CustomerID:   c.ID,
		Amount:       10000,
		InterestRate: 2,
		Ornaments: []services.OrnamentInput{
			{Name: "Gold Chain", Type: "gold", GrossWeight: 10, NetWeight: 9},
			{Name: "Silver Anklet", Type: "silver", GrossWeight: 20, NetWeight: 18},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BillActive, bill.Status)
	assert.Equal(t, "Asha", bill.CustomerName)
	assert.Equal(t, 10000.0, bill.TotalDue())

	require.Len(t, ornaments, 2)
	for _, o := range ornaments {
		assert.Equal(t, "B-101", o.BillID)
		assert.False(t, o.IsTemplate())
	}

	txs := f.store.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxBillCreated, txs[0].Type)
	assert.Equal(t, "B-101", txs[0].BillID)
	assert.Equal(t, 10000.0, txs[0].Amount)
	assert.Equal(t, "Asha", txs[0].CustomerName)
}

func TestCreateBillRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")

	ornament := services.OrnamentInput{Name: "Ring", GrossWeight: 5, NetWeight: 4}

	t.Run("unknown customer", func(t *testing.T) {
		_, _, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
			BillID:     "B-1",
			CustomerID: "missing",
			Amount:     1000,
			Ornaments:  []services.OrnamentInput{ornament},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no ornaments", func(t *testing.T) {
		_, _, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
			BillID:     "B-1",
			CustomerID: c.ID,
			Amount:     1000,
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("non-finite amount", func(t *testing.T) {
		_, _, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
			BillID:     "B-1",
			CustomerID: c.ID,
			Amount:     math.Inf(1),
			Ornaments:  []services.OrnamentInput{ornament},
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("net above gross", func(t *testing.T) {
		_, _, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
			BillID:     "B-1",
			CustomerID: c.ID,
			Amount:     1000,
			Ornaments: []services.OrnamentInput{
				{Name: "Ring", GrossWeight: 4, NetWeight: 5},
			},
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown metal", func(t *testing.T) {
		_, _, err := f.ledger.CreateBill(ctx, &services.CreateBillInput{
			BillID:     "B-1",
			CustomerID: c.ID,
			Amount:     1000,
			Ornaments: []services.OrnamentInput{
				{Name: "Ring", Type: "platinum", GrossWeight: 5, NetWeight: 4},
			},
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	// Nothing partial may remain after the rejections above.
	assert.Empty(t, f.store.Bills())
	assert.Empty(t, f.store.Transactions())
}

func TestInterestPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	updated, err := f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 200})
	require.NoError(t, err)

	assert.Equal(t, 200.0, updated.TotalInterest)
	assert.Equal(t, 10200.0, updated.TotalDue())

	txs := f.store.Transactions()
	require.Len(t, txs, 2)
	last := txs[len(txs)-1]
	assert.Equal(t, domain.TxInterestPaid, last.Type)
	assert.Equal(t, 200.0, last.Amount)
	assert.Equal(t, "B-101", last.BillID)
}

func TestExtraPaymentReducesDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	updated, err := f.ledger.RecordExtraPayment(ctx, bill.ID, &services.PaymentInput{Amount: 3000})
	require.NoError(t, err)

	assert.Equal(t, 3000.0, updated.ExtraAmountPaid)
	assert.Equal(t, 7000.0, updated.TotalDue())

	last := f.store.Transactions()[1]
	assert.Equal(t, domain.TxExtraAmount, last.Type)
}

func TestPaymentRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 0})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 100, AccountID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown bill", func(t *testing.T) {
		_, err := f.ledger.RecordExtraPayment(ctx, "missing", &services.PaymentInput{Amount: 100})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBillLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	t.Run("clear before release", func(t *testing.T) {
		_, err := f.ledger.ClearBill(ctx, bill.ID)
		assert.ErrorIs(t, err, domain.ErrBillNotReleased)
	})

	t.Run("release without image", func(t *testing.T) {
		_, err := f.ledger.ReleaseBill(ctx, bill.ID, &services.ReleaseInput{})
		assert.ErrorIs(t, err, domain.ErrReleaseImage)
	})

	t.Run("release", func(t *testing.T) {
		f.clock.Advance(time.Second)
		released, err := f.ledger.ReleaseBill(ctx, bill.ID, &services.ReleaseInput{
			ReleaseImage: "data:image/jpeg;base64,xxxx",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.BillReleased, released.Status)
		require.NotNil(t, released.ReleasedAt)
		assert.Equal(t, f.clock.Read(), *released.ReleasedAt)

		last := f.store.Transactions()[1]
		assert.Equal(t, domain.TxBillReleased, last.Type)
		assert.Equal(t, 10000.0, last.Amount)
	})

	t.Run("payments after release", func(t *testing.T) {
		_, err := f.ledger.RecordInterestPayment(ctx, bill.ID, &services.PaymentInput{Amount: 100})
		assert.ErrorIs(t, err, domain.ErrBillNotActive)

		_, err = f.ledger.RecordExtraPayment(ctx, bill.ID, &services.PaymentInput{Amount: 100})
		assert.ErrorIs(t, err, domain.ErrBillNotActive)
	})

	t.Run("double release", func(t *testing.T) {
		_, err := f.ledger.ReleaseBill(ctx, bill.ID, &services.ReleaseInput{ReleaseImage: "img"})
		assert.ErrorIs(t, err, domain.ErrBillNotActive)
	})

	t.Run("clear", func(t *testing.T) {
		f.clock.Advance(time.Second)
		cleared, err := f.ledger.ClearBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BillCleared, cleared.Status)
		require.NotNil(t, cleared.ClearedAt)

		txs := f.store.Transactions()
		assert.Equal(t, domain.TxBillCleared, txs[len(txs)-1].Type)
	})

	t.Run("clear is terminal", func(t *testing.T) {
		_, err := f.ledger.ClearBill(ctx, bill.ID)
		assert.ErrorIs(t, err, domain.ErrBillNotReleased)
	})
}

func TestUpdateBillRecordsModification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	amount := 12000.0
	updated, err := f.ledger.UpdateBill(ctx, bill.ID, &services.UpdateBillInput{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 12000.0, updated.Amount)

	txs := f.store.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxBillModified, txs[1].Type)

	// A rename of the paper bill number alone is not a financial change.
	newNumber := "B-101A"
	_, err = f.ledger.UpdateBill(ctx, bill.ID, &services.UpdateBillInput{BillID: &newNumber})
	require.NoError(t, err)
	assert.Len(t, f.store.Transactions(), 2)
}

func TestCustomerRenameKeepsSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Asha")
	bill := f.bill(t, c.ID, "B-101", 10000)

	name := "Asha Rani"
	_, err := f.ledger.UpdateCustomer(ctx, c.ID, &services.UpdateCustomerInput{Name: &name})
	require.NoError(t, err)

	fresh, err := f.store.BillByID(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", fresh.CustomerName)
	assert.Equal(t, "Asha", f.store.Transactions()[0].CustomerName)
}

func TestOrnamentTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tmpl, err := f.ledger.CreateOrnamentTemplate(ctx, &services.OrnamentInput{
		Name:        "Gold Ring",
		Type:        "gold",
		GrossWeight: 5,
		NetWeight:   4.5,
	})
	require.NoError(t, err)
	assert.True(t, tmpl.IsTemplate())
	assert.Empty(t, tmpl.BillID)

	t.Run("weight invariant on update", func(t *testing.T) {
		net := 6.0
		_, err := f.ledger.UpdateOrnament(ctx, tmpl.ID, &services.UpdateOrnamentInput{NetWeight: &net})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("partial update", func(t *testing.T) {
		name := "Gold Ring Small"
		gross := 6.0
		net := 5.5
		updated, err := f.ledger.UpdateOrnament(ctx, tmpl.ID, &services.UpdateOrnamentInput{
			Name:        &name,
			GrossWeight: &gross,
			NetWeight:   &net,
		})
		require.NoError(t, err)
		assert.Equal(t, "Gold Ring Small", updated.Name)
		assert.Equal(t, 6.0, updated.GrossWeight)
		assert.True(t, updated.IsTemplate())
	})
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("balance starts at zero", func(t *testing.T) {
		a, err := f.ledger.CreateAccount(ctx, &services.CreateAccountInput{Name: "Shop Cash", Type: "cash"})
		require.NoError(t, err)
		assert.Zero(t, a.Balance)
		assert.Equal(t, domain.AccountCash, a.Type)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := f.ledger.CreateAccount(ctx, &services.CreateAccountInput{Name: "Vault", Type: "crypto"})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}
