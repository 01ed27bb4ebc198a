// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/cachepkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// maxCreateAttempts bounds identifier regeneration after collisions.
const maxCreateAttempts = 5

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, identifier, holderName string, balance decimal.Decimal) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// IdentifierGenerator generates new account identifiers.
type IdentifierGenerator interface {
	Generate() string
}

// Service facilitates account service layer logic.
type Service struct {
	repo  Repo
	ids   IdentifierGenerator
	cache cachepkg.Cache
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, ids IdentifierGenerator, cache cachepkg.Cache) *Service {
	return &Service{
		repo:  ar,
		ids:   ids,
		cache: cache,
	}
}

// Create opens a zero balance account for the given holder name.
func (s *Service) Create(ctx context.Context, holderName string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	holderName = strings.TrimSpace(holderName)

	if holderName == "" {
		return domain.Account{}, domain.ErrEmptyHolderName
	}

	if utf8.RuneCountInString(holderName) > domain.MaxHolderNameLen {
		return domain.Account{}, domain.ErrHolderNameTooLong
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		identifier := s.ids.Generate()

		account, err := s.repo.Create(ctx, identifier, holderName, decimal.Zero)
		if errors.Is(err, domain.ErrIdentifierTaken) {
			l.Warn().Str("identifier", identifier).Int("attempt", attempt).Msg("identifier collision")
			continue
		}

		if err != nil {
			return domain.Account{}, err
		}

		if err := s.cache.Invalidate(ctx, cachepkg.AccountsKey); err != nil {
			l.Warn().Err(err).Msg("cannot invalidate accounts cache")
		}

		l.Info().Str("identifier", account.Identifier).Msg("account created")

		return account, nil
	}

	l.Error().Int("attempts", maxCreateAttempts).Msg("cannot generate unique identifier")

	return domain.Account{}, errorspkg.ErrStorage
}

// List returns all accounts, most recently created first.
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var accounts []domain.Account

	found, version, err := s.cache.Get(ctx, cachepkg.AccountsKey, &accounts)
	if err != nil {
		l.Warn().Err(err).Msg("cannot read accounts cache")
	}

	if found && err == nil {
		return accounts, nil
	}

	accounts, err = s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cachepkg.AccountsKey, version, accounts); err != nil {
		l.Warn().Err(err).Msg("cannot fill accounts cache")
	}

	return accounts, nil
}
