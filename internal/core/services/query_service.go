package services

import (
	"sort"
	"time"

	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/core/domain"
)

// QueryService is the read side of the ledger: pure projections over the
// in-memory collections, recomputed on every call. Nothing here caches and
// nothing here mutates.
type QueryService struct {
	store *store.Store
}

// NewQueryService creates a new query service
func NewQueryService(st *store.Store) *QueryService {
	return &QueryService{store: st}
}

// Customers returns every customer in insertion order.
func (s *QueryService) Customers() []domain.Customer {
	return s.store.Customers()
}

// Customer returns one customer by record id.
func (s *QueryService) Customer(id string) (domain.Customer, error) {
	return s.store.CustomerByID(id)
}

// Bills returns every bill in insertion order.
func (s *QueryService) Bills() []domain.Bill {
	return s.store.Bills()
}

// Bill returns one bill by record id.
func (s *QueryService) Bill(id string) (domain.Bill, error) {
	return s.store.BillByID(id)
}

// Ornaments returns every ornament, pledged and template, in insertion order.
func (s *QueryService) Ornaments() []domain.Ornament {
	return s.store.Ornaments()
}

// Accounts returns every account in insertion order.
func (s *QueryService) Accounts() []domain.Account {
	return s.store.Accounts()
}

// Account returns one account by record id.
func (s *QueryService) Account(id string) (domain.Account, error) {
	return s.store.AccountByID(id)
}

// CustomerBills returns every bill for the customer in insertion order.
func (s *QueryService) CustomerBills(customerID string) []domain.Bill {
	out := []domain.Bill{}
	for _, b := range s.store.Bills() {
		if b.CustomerID == customerID {
			out = append(out, b)
		}
	}
	return out
}

// BillOrnaments returns the pledged ornaments attached to an external bill
// id, in insertion order. A dangling billId simply matches nothing.
func (s *QueryService) BillOrnaments(billID string) []domain.Ornament {
	out := []domain.Ornament{}
	for _, o := range s.store.Ornaments() {
		if !o.IsTemplate() && o.BillID == billID {
			out = append(out, o)
		}
	}
	return out
}

// OrnamentTemplates returns the reusable catalog entries.
func (s *QueryService) OrnamentTemplates() []domain.Ornament {
	out := []domain.Ornament{}
	for _, o := range s.store.Ornaments() {
		if o.IsTemplate() {
			out = append(out, o)
		}
	}
	return out
}

// sameDay compares by local calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TransactionsOn returns the transactions whose date falls on the same local
// calendar day as day, in insertion order.
func (s *QueryService) TransactionsOn(day time.Time) []domain.Transaction {
	out := []domain.Transaction{}
	for _, t := range s.store.Transactions() {
		if sameDay(t.Date, day) {
			out = append(out, t)
		}
	}
	return out
}

// TodayTransactions returns the current calendar day's transactions.
func (s *QueryService) TodayTransactions() []domain.Transaction {
	return s.TransactionsOn(s.store.Clock()())
}

// TransactionsByDateRange returns transactions with start <= date <= end,
// sorted by date descending.
func (s *QueryService) TransactionsByDateRange(start, end time.Time) []domain.Transaction {
	out := []domain.Transaction{}
	for _, t := range s.store.Transactions() {
		if !t.Date.Before(start) && !t.Date.After(end) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// AccountTransactions returns every transaction linked to the account, in
// insertion order.
func (s *QueryService) AccountTransactions(accountID string) []domain.Transaction {
	out := []domain.Transaction{}
	for _, t := range s.store.Transactions() {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}

// AccountBalance derives the account's balance from its ledger entries:
// payments and settlements come in, disbursed principal goes out. The stored
// balance field is legacy layout baggage and is never read here.
func (s *QueryService) AccountBalance(accountID string) float64 {
	var balance float64
	for _, t := range s.AccountTransactions(accountID) {
		switch t.Type {
		case domain.TxInterestPaid, domain.TxExtraAmount, domain.TxBillReleased:
			balance += t.Amount
		case domain.TxBillCreated:
			balance -= t.Amount
		}
	}
	return balance
}
