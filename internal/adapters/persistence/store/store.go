package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"pawnbook/internal/adapters/persistence/kv"
	"pawnbook/internal/core/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection key suffixes. The full key is prefix + suffix, matching the
// layout the earlier browser-based version of this application persisted
// under (pawn_customers, pawn_bills, ...).
const (
	keyCustomers    = "customers"
	keyBills        = "bills"
	keyOrnaments    = "ornaments"
	keyTransactions = "transactions"
	keyAccounts     = "accounts"
)

// DefaultPrefix matches the legacy persisted layout.
const DefaultPrefix = "pawn_"

// Config tunes a Store.
type Config struct {
	// Prefix is prepended to every collection key. Defaults to DefaultPrefix.
	Prefix string
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// Now is the clock used for id and timestamp assignment. Defaults to
	// time.Now. Tests override it to pin date boundaries.
	Now func() time.Time
}

// Store holds the five ledger collections in memory and writes each one back
// to the persistent medium, whole, on every mutation. Collections keep
// insertion order. A mutex stands in for the single-threaded execution model
// the data model was designed under: mutations are atomic in memory, but
// there is deliberately no atomicity across two collections (a bill and its
// transaction are two writes).
type Store struct {
	mu     sync.RWMutex
	medium kv.Store
	prefix string
	log    *zap.Logger
	now    func() time.Time
	lastID int64

	customers    []domain.Customer
	bills        []domain.Bill
	ornaments    []domain.Ornament
	transactions []domain.Transaction
	accounts     []domain.Account
}

// Open loads every collection from the medium. A key that has never been
// written yields an empty collection; a malformed value is an error (the
// legacy application loaded blindly, this one refuses to start on corrupt
// data rather than silently operating on it).
func Open(ctx context.Context, medium kv.Store, cfg Config) (*Store, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Store{
		medium: medium,
		prefix: cfg.Prefix,
		log:    cfg.Logger,
		now:    cfg.Now,
	}

	if err := load(ctx, s, keyCustomers, &s.customers); err != nil {
		return nil, err
	}
	if err := load(ctx, s, keyBills, &s.bills); err != nil {
		return nil, err
	}
	if err := load(ctx, s, keyOrnaments, &s.ornaments); err != nil {
		return nil, err
	}
	if err := load(ctx, s, keyTransactions, &s.transactions); err != nil {
		return nil, err
	}
	if err := load(ctx, s, keyAccounts, &s.accounts); err != nil {
		return nil, err
	}

	s.log.Info("ledger store opened",
		zap.Int("customers", len(s.customers)),
		zap.Int("bills", len(s.bills)),
		zap.Int("ornaments", len(s.ornaments)),
		zap.Int("transactions", len(s.transactions)),
		zap.Int("accounts", len(s.accounts)),
	)
	return s, nil
}

func load[T any](ctx context.Context, s *Store, key string, into *[]T) error {
	data, err := s.medium.Get(ctx, s.prefix+key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		*into = []T{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist serializes the whole collection and writes it under the lock held
// by the caller. Callers only commit the in-memory slice after persist
// succeeds, so a failed write leaves the last-known-good state visible.
func persist[T any](ctx context.Context, s *Store, key string, collection []T) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return &domain.PersistenceError{Collection: key, Err: err}
	}
	if err := s.medium.Put(ctx, s.prefix+key, data); err != nil {
		s.log.Error("collection write failed", zap.String("collection", key), zap.Error(err))
		return &domain.PersistenceError{Collection: key, Err: err}
	}
	return nil
}

// Clock returns the store's time source so callers stamp event times from
// the same clock id assignment uses.
func (s *Store) Clock() func() time.Time {
	return s.now
}

// newID returns a millisecond-timestamp id, the scheme the legacy records
// already use. Kept monotonic so two creations in the same millisecond never
// collide.
func (s *Store) newID() string {
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// newOrnamentID adds a random suffix; ornaments are created in batches and
// would otherwise collide within one millisecond.
func (s *Store) newOrnamentID() string {
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

// ---------------------------------------------------------------------------
// Customers

func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

func (s *Store) CustomerByID(id string) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Customer{}, domain.NotFound("customer", id)
}

// AddCustomer assigns an id and creation timestamp, appends and persists.
func (s *Store) AddCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.newID()
	c.CreatedAt = s.now()

	next := append(copyOf(s.customers), c)
	if err := persist(ctx, s, keyCustomers, next); err != nil {
		return domain.Customer{}, err
	}
	s.customers = next
	return c, nil
}

// UpdateCustomer applies a partial update to the matching record. The apply
// function receives a copy; it is only committed after the collection
// persists.
func (s *Store) UpdateCustomer(ctx context.Context, id string, apply func(*domain.Customer)) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.customers {
		if s.customers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Customer{}, domain.NotFound("customer", id)
	}

	next := copyOf(s.customers)
	apply(&next[idx])
	// identity and creation time are immutable
	next[idx].ID = id
	next[idx].CreatedAt = s.customers[idx].CreatedAt

	if err := persist(ctx, s, keyCustomers, next); err != nil {
		return domain.Customer{}, err
	}
	s.customers = next
	return next[idx], nil
}

// ---------------------------------------------------------------------------
// Bills

func (s *Store) Bills() []domain.Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bill, len(s.bills))
	copy(out, s.bills)
	return out
}

func (s *Store) BillByID(id string) (domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bills {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Bill{}, domain.NotFound("bill", id)
}

func (s *Store) AddBill(ctx context.Context, b domain.Bill) (domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.newID()
	b.CreatedAt = s.now()
	b.Status = domain.BillActive
	b.TotalInterest = 0
	b.ExtraAmountPaid = 0

	next := append(copyOf(s.bills), b)
	if err := persist(ctx, s, keyBills, next); err != nil {
		return domain.Bill{}, err
	}
	s.bills = next
	return b, nil
}

func (s *Store) UpdateBill(ctx context.Context, id string, apply func(*domain.Bill)) (domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.bills {
		if s.bills[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Bill{}, domain.NotFound("bill", id)
	}

	next := copyOf(s.bills)
	apply(&next[idx])
	next[idx].ID = id
	next[idx].CreatedAt = s.bills[idx].CreatedAt

	if err := persist(ctx, s, keyBills, next); err != nil {
		return domain.Bill{}, err
	}
	s.bills = next
	return next[idx], nil
}

// ---------------------------------------------------------------------------
// Ornaments

func (s *Store) Ornaments() []domain.Ornament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ornament, len(s.ornaments))
	copy(out, s.ornaments)
	return out
}

func (s *Store) OrnamentByID(id string) (domain.Ornament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.ornaments {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Ornament{}, domain.NotFound("ornament", id)
}

// AddOrnaments appends a batch in one persisted write. Bill creation attaches
// all of a bill's ornament rows through a single call.
func (s *Store) AddOrnaments(ctx context.Context, batch []domain.Ornament) ([]domain.Ornament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]domain.Ornament, len(batch))
	next := copyOf(s.ornaments)
	for i, o := range batch {
		o.ID = s.newOrnamentID()
		if o.Kind == "" {
			o.Kind = domain.OrnamentPledged
		}
		added[i] = o
		next = append(next, o)
	}

	if err := persist(ctx, s, keyOrnaments, next); err != nil {
		return nil, err
	}
	s.ornaments = next
	return added, nil
}

func (s *Store) UpdateOrnament(ctx context.Context, id string, apply func(*domain.Ornament)) (domain.Ornament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.ornaments {
		if s.ornaments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Ornament{}, domain.NotFound("ornament", id)
	}

	next := copyOf(s.ornaments)
	apply(&next[idx])
	next[idx].ID = id

	if err := persist(ctx, s, keyOrnaments, next); err != nil {
		return domain.Ornament{}, err
	}
	s.ornaments = next
	return next[idx], nil
}

// ---------------------------------------------------------------------------
// Transactions (append-only)

func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// AppendTransaction stamps id and date and appends. There is no update or
// delete; this collection is the audit trail everything else reports from.
func (s *Store) AppendTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.newID()
	t.Date = s.now()

	next := append(copyOf(s.transactions), t)
	if err := persist(ctx, s, keyTransactions, next); err != nil {
		return domain.Transaction{}, err
	}
	s.transactions = next
	return t, nil
}

// ---------------------------------------------------------------------------
// Accounts

func (s *Store) Accounts() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

func (s *Store) AccountByID(id string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Account{}, domain.NotFound("account", id)
}

func (s *Store) AddAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.newID()
	a.CreatedAt = s.now()
	a.Balance = 0

	next := append(copyOf(s.accounts), a)
	if err := persist(ctx, s, keyAccounts, next); err != nil {
		return domain.Account{}, err
	}
	s.accounts = next
	return a, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, apply func(*domain.Account)) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Account{}, domain.NotFound("account", id)
	}

	next := copyOf(s.accounts)
	apply(&next[idx])
	next[idx].ID = id
	next[idx].CreatedAt = s.accounts[idx].CreatedAt

	if err := persist(ctx, s, keyAccounts, next); err != nil {
		return domain.Account{}, err
	}
	s.accounts = next
	return next[idx], nil
}

func copyOf[T any](in []T) []T {
	out := make([]T, len(in), len(in)+1)
	copy(out, in)
	return out
}
