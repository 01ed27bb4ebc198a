// Package transactionservice manages business logic layer of transaction history.
package transactionservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/cachepkg"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo  Repo
	cache cachepkg.Cache
}

// New returns transaction service struct.
func New(tr Repo, cache cachepkg.Cache) *Service {
	return &Service{
		repo:  tr,
		cache: cache,
	}
}

// List returns the transactions where the account is source or destination,
// most recent first. An unknown account has no transactions.
func (s *Service) List(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if strings.TrimSpace(accountID) == "" {
		return nil, domain.ErrMissingAccountID
	}

	key := cachepkg.TransactionsKey(accountID)

	var transactions []domain.Transaction

	found, version, err := s.cache.Get(ctx, key, &transactions)
	if err != nil {
		l.Warn().Err(err).Msg("cannot read transactions cache")
	}

	if found && err == nil {
		return transactions, nil
	}

	transactions, err = s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, version, transactions); err != nil {
		l.Warn().Err(err).Msg("cannot fill transactions cache")
	}

	return transactions, nil
}
