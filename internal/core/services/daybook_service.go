package services

import (
	"sort"
	"time"

	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/core/domain"
)

// DayBookService builds the daily cash book and the dashboard figures.
// Everything here is a projection over the transaction ledger; nothing is
// read from stored counters.
type DayBookService struct {
	store   *store.Store
	queries *QueryService
}

// NewDayBookService creates a new day book service
func NewDayBookService(st *store.Store, queries *QueryService) *DayBookService {
	return &DayBookService{store: st, queries: queries}
}

// DayBook summarises the money movement over a date range. Inflow is
// interest and extra-amount payments, outflow is principal disbursed on new
// bills. Release and clear entries change bill state, not the cash book.
type DayBook struct {
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	TotalIn      float64              `json:"totalIn"`
	TotalOut     float64              `json:"totalOut"`
	InCount      int                  `json:"inCount"`
	OutCount     int                  `json:"outCount"`
	Transactions []domain.Transaction `json:"transactions"`
	LatestByBill []domain.Transaction `json:"latestByBill"`
}

// Range builds the day book for the inclusive date range [start, end].
func (s *DayBookService) Range(start, end time.Time) *DayBook {
	transactions := s.queries.TransactionsByDateRange(start, end)

	book := &DayBook{
		Start:        start,
		End:          end,
		Transactions: transactions,
		LatestByBill: latestPerBill(transactions),
	}
	for _, t := range transactions {
		switch t.Type {
		case domain.TxInterestPaid, domain.TxExtraAmount:
			book.TotalIn += t.Amount
			book.InCount++
		case domain.TxBillCreated:
			book.TotalOut += t.Amount
			book.OutCount++
		}
	}
	return book
}

// Today builds the day book for the current calendar day.
func (s *DayBookService) Today() *DayBook {
	now := s.store.Clock()()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.Range(day, day.AddDate(0, 0, 1).Add(-time.Nanosecond))
}

// latestPerBill keeps only the most recent entry for each bill, preserving
// the overall newest-first ordering of in.
func latestPerBill(in []domain.Transaction) []domain.Transaction {
	seen := map[string]bool{}
	out := []domain.Transaction{}
	for _, t := range in {
		if seen[t.BillID] {
			continue
		}
		seen[t.BillID] = true
		out = append(out, t)
	}
	return out
}

// Clock exposes the ledger's time source so handlers default date windows
// from the same clock the records are stamped with.
func (s *DayBookService) Clock() func() time.Time {
	return s.store.Clock()
}

// AccountSummary reports the account-linked money flow over a date window.
// Collected is settled principal (bill_released), disbursed is the interest
// and extra payments routed through the account. Balance is the all-time
// derived figure, independent of the window.
type AccountSummary struct {
	AccountID      string               `json:"accountId"`
	Start          time.Time            `json:"start"`
	End            time.Time            `json:"end"`
	TotalCollected float64              `json:"totalCollected"`
	TotalDisbursed float64              `json:"totalDisbursed"`
	Balance        float64              `json:"balance"`
	Transactions   []domain.Transaction `json:"transactions"`
}

// ForAccount summarises one account's ledger entries within [start, end].
func (s *DayBookService) ForAccount(accountID string, start, end time.Time) (*AccountSummary, error) {
	if _, err := s.store.AccountByID(accountID); err != nil {
		return nil, err
	}

	windowed := []domain.Transaction{}
	for _, t := range s.queries.AccountTransactions(accountID) {
		if !t.Date.Before(start) && !t.Date.After(end) {
			windowed = append(windowed, t)
		}
	}

	out := &AccountSummary{
		AccountID:    accountID,
		Start:        start,
		End:          end,
		Balance:      s.queries.AccountBalance(accountID),
		Transactions: windowed,
	}
	for _, t := range windowed {
		switch t.Type {
		case domain.TxBillReleased:
			out.TotalCollected += t.Amount
		case domain.TxInterestPaid, domain.TxExtraAmount:
			out.TotalDisbursed += t.Amount
		}
	}
	return out, nil
}

// Dashboard holds the landing-page statistics.
type Dashboard struct {
	TotalCustomers    int                  `json:"totalCustomers"`
	ActiveBills       int                  `json:"activeBills"`
	TodayRevenue      float64              `json:"todayRevenue"`
	TodayTransactions int                  `json:"todayTransactions"`
	Recent            []domain.Transaction `json:"recentTransactions"`
}

// recentLimit caps the recent-transactions list on the dashboard.
const recentLimit = 5

// Stats computes the dashboard snapshot. Revenue is the sum of every amount
// moved today, regardless of direction or type.
func (s *DayBookService) Stats() *Dashboard {
	out := &Dashboard{
		TotalCustomers: len(s.store.Customers()),
	}
	for _, b := range s.store.Bills() {
		if b.Status == domain.BillActive {
			out.ActiveBills++
		}
	}

	today := s.queries.TodayTransactions()
	out.TodayTransactions = len(today)
	for _, t := range today {
		out.TodayRevenue += t.Amount
	}

	sort.SliceStable(today, func(i, j int) bool { return today[i].Date.After(today[j].Date) })
	if len(today) > recentLimit {
		today = today[:recentLimit]
	}
	out.Recent = today
	return out
}
