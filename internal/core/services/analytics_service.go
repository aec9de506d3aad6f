package services

import (
	"sort"
	"strings"
	"time"

	"pawnbook/internal/adapters/persistence/store"
	"pawnbook/internal/core/domain"
)

// AnalyticsService computes the per-customer view the customer details
// screen renders: filtered bill history, filtered transaction history,
// ornament distributions and a monthly amount timeline.
type AnalyticsService struct {
	store   *store.Store
	queries *QueryService
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(st *store.Store, queries *QueryService) *AnalyticsService {
	return &AnalyticsService{store: st, queries: queries}
}

// AnalyticsFilter narrows a customer's analytics. Zero values mean "all".
// BillID and Status narrow the bill set (and through it the ornament
// distributions); Year, Month, MetalType and OrnamentName narrow the
// transaction list and timeline. Metal and ornament-name filters are
// two-hop: they select bills by their ornaments first, then keep the
// transactions belonging to those bills.
type AnalyticsFilter struct {
	Year         int
	Month        int
	MetalType    string
	OrnamentName string
	BillID       string
	Status       string
	SortBy       string // date | amount
	SortOrder    string // asc | desc
}

// CountItem is one slice of a distribution chart.
type CountItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TimelinePoint is one month bucket of the transaction-amount timeline.
type TimelinePoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// CustomerAnalytics is the full analytics payload for one customer.
type CustomerAnalytics struct {
	Customer     domain.Customer      `json:"customer"`
	TotalAmount  float64              `json:"totalAmount"`
	BillCount    int                  `json:"billCount"`
	ActiveLoans  int                  `json:"activeLoans"`
	Bills        []domain.Bill        `json:"bills"`
	Transactions []domain.Transaction `json:"transactions"`
	OrnamentDist []CountItem          `json:"ornamentDistribution"`
	MetalDist    []CountItem          `json:"metalDistribution"`
	Timeline     []TimelinePoint      `json:"timeline"`
}

// timelineMonths is how many month buckets the timeline keeps, most recent
// first discarded last.
const timelineMonths = 12

// ForCustomer computes the analytics payload for one customer.
func (s *AnalyticsService) ForCustomer(customerID string, f AnalyticsFilter) (*CustomerAnalytics, error) {
	customer, err := s.store.CustomerByID(customerID)
	if err != nil {
		return nil, err
	}

	bills := s.filteredBills(customerID, f)
	ornaments := s.billOrnaments(bills)
	transactions := s.filteredTransactions(customerID, bills, ornaments, f)

	out := &CustomerAnalytics{
		Customer:     customer,
		Bills:        bills,
		Transactions: transactions,
		BillCount:    len(bills),
		OrnamentDist: distribution(ornaments, func(o domain.Ornament) string { return o.Name }),
		MetalDist:    metalDistribution(ornaments),
		Timeline:     timeline(transactions),
	}
	for _, b := range bills {
		out.TotalAmount += b.Amount
		if b.Status == domain.BillActive {
			out.ActiveLoans++
		}
	}
	return out, nil
}

func (s *AnalyticsService) filteredBills(customerID string, f AnalyticsFilter) []domain.Bill {
	bills := s.queries.CustomerBills(customerID)

	filtered := bills[:0:0]
	for _, b := range bills {
		if f.BillID != "" && b.BillID != f.BillID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		filtered = append(filtered, b)
	}

	asc := f.SortOrder == "asc"
	if f.SortBy == "amount" {
		sort.SliceStable(filtered, func(i, j int) bool {
			if asc {
				return filtered[i].Amount < filtered[j].Amount
			}
			return filtered[i].Amount > filtered[j].Amount
		})
	} else {
		sort.SliceStable(filtered, func(i, j int) bool {
			if asc {
				return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
			}
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		})
	}
	return filtered
}

// billOrnaments collects the pledged ornaments of the given bills.
func (s *AnalyticsService) billOrnaments(bills []domain.Bill) []domain.Ornament {
	ids := make(map[string]bool, len(bills))
	for _, b := range bills {
		ids[b.BillID] = true
	}
	out := []domain.Ornament{}
	for _, o := range s.store.Ornaments() {
		if !o.IsTemplate() && ids[o.BillID] {
			out = append(out, o)
		}
	}
	return out
}

func (s *AnalyticsService) filteredTransactions(customerID string, bills []domain.Bill, ornaments []domain.Ornament, f AnalyticsFilter) []domain.Transaction {
	all := []domain.Transaction{}
	for _, t := range s.store.Transactions() {
		if t.CustomerID == customerID {
			all = append(all, t)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })

	// Two-hop filters: pick bills via their ornaments, then keep the
	// transactions of those bills.
	var billIDs map[string]bool
	if f.MetalType != "" || f.OrnamentName != "" {
		billIDs = make(map[string]bool)
		byBill := make(map[string][]domain.Ornament)
		for _, o := range ornaments {
			byBill[o.BillID] = append(byBill[o.BillID], o)
		}
		for _, b := range bills {
			for _, o := range byBill[b.BillID] {
				if f.MetalType != "" && string(o.Type) != f.MetalType {
					continue
				}
				if f.OrnamentName != "" &&
					!strings.Contains(strings.ToLower(o.Name), strings.ToLower(f.OrnamentName)) {
					continue
				}
				billIDs[b.BillID] = true
				break
			}
		}
	}

	out := []domain.Transaction{}
	for _, t := range all {
		if f.Year != 0 && t.Date.Year() != f.Year {
			continue
		}
		if f.Month != 0 && int(t.Date.Month()) != f.Month {
			continue
		}
		if billIDs != nil && !billIDs[t.BillID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func distribution(ornaments []domain.Ornament, key func(domain.Ornament) string) []CountItem {
	counts := map[string]int{}
	order := []string{}
	for _, o := range ornaments {
		k := key(o)
		if k == "" {
			continue
		}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	out := make([]CountItem, 0, len(order))
	for _, k := range order {
		out = append(out, CountItem{Name: k, Value: counts[k]})
	}
	return out
}

func metalDistribution(ornaments []domain.Ornament) []CountItem {
	var gold, silver int
	for _, o := range ornaments {
		switch o.Type {
		case domain.MetalGold:
			gold++
		case domain.MetalSilver:
			silver++
		}
	}
	out := []CountItem{}
	if gold > 0 {
		out = append(out, CountItem{Name: "Gold", Value: gold})
	}
	if silver > 0 {
		out = append(out, CountItem{Name: "Silver", Value: silver})
	}
	return out
}

// timeline groups transaction amounts by month and keeps the most recent
// twelve buckets, oldest first.
func timeline(transactions []domain.Transaction) []TimelinePoint {
	type bucket struct {
		at     time.Time
		amount float64
	}
	buckets := map[string]*bucket{}
	for _, t := range transactions {
		key := t.Date.Format("Jan 2006")
		b, ok := buckets[key]
		if !ok {
			monthStart := time.Date(t.Date.Year(), t.Date.Month(), 1, 0, 0, 0, 0, t.Date.Location())
			b = &bucket{at: monthStart}
			buckets[key] = b
		}
		b.amount += t.Amount
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return buckets[keys[i]].at.Before(buckets[keys[j]].at)
	})
	if len(keys) > timelineMonths {
		keys = keys[len(keys)-timelineMonths:]
	}

	out := make([]TimelinePoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, TimelinePoint{Month: k, Amount: buckets[k].amount})
	}
	return out
}
