// Package memstore provides an in-process ledger store.
//
// All state changes run under a single mutex, so a transfer is applied
// completely or not at all. It backs the memory driver and tests that do not
// need PostgreSQL.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

type account struct {
	domain.Account
	seq int64
}

type transaction struct {
	domain.Transaction
	key string
}

// Store keeps accounts and transactions in memory.
type Store struct {
	mu           sync.Mutex
	seq          int64
	accounts     map[string]*account
	transactions []transaction
	keys         map[string]int
	now          func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*account),
		keys:     make(map[string]int),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// checkCtx reports a cancelled or expired context as a storage error.
func checkCtx(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("op", op).Msg("storage fault")
		return errorspkg.ErrStorage
	}

	return nil
}

// Create inserts the account and then returns it.
func (s *Store) Create(ctx context.Context, identifier, holderName string, balance decimal.Decimal) (domain.Account, error) {
	if err := checkCtx(ctx, "memstore.Create"); err != nil {
		return domain.Account{}, err
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[identifier]; ok {
		return domain.Account{}, domain.ErrIdentifierTaken
	}

	a := &account{
		Account: domain.Account{
			Identifier: identifier,
			HolderName: holderName,
			Balance:    balance,
			CreatedAt:  s.now(),
		},
		seq: s.nextSeq(),
	}
	s.accounts[identifier] = a

	return a.Account, nil
}

// Get returns the account with the given identifier.
func (s *Store) Get(ctx context.Context, identifier string) (domain.Account, error) {
	if err := checkCtx(ctx, "memstore.Get"); err != nil {
		return domain.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[identifier]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a.Account, nil
}

// List returns all accounts, most recently created first.
func (s *Store) List(ctx context.Context) ([]domain.Account, error) {
	if err := checkCtx(ctx, "memstore.List"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].seq > all[j].seq })

	items := make([]domain.Account, 0, len(all))
	for _, a := range all {
		items = append(items, a.Account)
	}

	return items, nil
}

// ListByAccount returns the transactions where the account is either side,
// most recent first.
func (s *Store) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	if err := checkCtx(ctx, "memstore.ListByAccount"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := []domain.Transaction{}

	for i := len(s.transactions) - 1; i >= 0; i-- {
		t := s.transactions[i]
		if t.FromID == accountID || t.ToID == accountID {
			items = append(items, t.Transaction)
		}
	}

	return items, nil
}

// Transfer moves money between two accounts and records a completed transaction.
//
// A transfer with an idempotency key that was already used returns the original
// transaction without moving money again.
func (s *Store) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	var result domain.TransferResult

	if arg.FromID == arg.ToID {
		return result, domain.ErrSameAccount
	}

	if !arg.Amount.IsPositive() {
		return result, domain.ErrNonPositiveAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if arg.IdempotencyKey != "" {
		if i, ok := s.keys[arg.IdempotencyKey]; ok {
			t := s.transactions[i].Transaction
			if !arg.SameRequest(t) {
				return result, domain.ErrIdempotencyKeyReused
			}

			return domain.TransferResult{Transaction: t, Replayed: true}, nil
		}
	}

	from, ok := s.accounts[arg.FromID]
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	to, ok := s.accounts[arg.ToID]
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	if from.Balance.LessThan(arg.Amount) {
		return result, domain.ErrInsufficientBalance
	}

	// Last point where the caller can still abandon the transfer.
	if err := checkCtx(ctx, "memstore.Transfer"); err != nil {
		return result, err
	}

	from.Balance = from.Balance.Sub(arg.Amount)
	to.Balance = to.Balance.Add(arg.Amount)

	t := transaction{
		Transaction: domain.Transaction{
			ID:        uuid.New(),
			FromID:    arg.FromID,
			ToID:      arg.ToID,
			Amount:    arg.Amount,
			Status:    domain.StatusCompleted,
			CreatedAt: s.now(),
		},
		key: arg.IdempotencyKey,
	}

	s.transactions = append(s.transactions, t)
	if t.key != "" {
		s.keys[t.key] = len(s.transactions) - 1
	}

	result.Transaction = t.Transaction
	result.FromAccount = from.Account
	result.ToAccount = to.Account

	return result, nil
}
