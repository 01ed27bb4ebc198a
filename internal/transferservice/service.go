// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/cachepkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo    Repo
	cache   cachepkg.Cache
	timeout time.Duration
}

// New return transfer service struct to manage transfer bussines logic.
//
// Each transfer is abandoned when it does not commit within timeout. A zero
// timeout disables the deadline.
func New(tr Repo, cache cachepkg.Cache, timeout time.Duration) *Service {
	return &Service{
		repo:    tr,
		cache:   cache,
		timeout: timeout,
	}
}

// Amount text limits. With at most maxAmountLen characters the coefficient has
// fewer than maxAmountLen digits, so any exponent outside
// [minAmountExponent, maxAmountExponent] is out of range or too precise.
const (
	maxAmountLen      = 40
	maxAmountExponent = 15
	minAmountExponent = -(maxAmountLen + domain.AmountScale)
)

// ParseAmount parses a transfer amount and checks its sign, scale and magnitude.
//
// The exponent is bounded before any rescaling, since decimal arithmetic on
// values like 1e-2000000000 allocates powers of ten of that size.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) > maxAmountLen {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if !d.IsPositive() {
		return decimal.Decimal{}, domain.ErrNonPositiveAmount
	}

	if d.Exponent() > maxAmountExponent {
		return decimal.Decimal{}, domain.ErrAmountTooLarge
	}

	if d.Exponent() < minAmountExponent {
		return decimal.Decimal{}, domain.ErrAmountPrecision
	}

	if !d.Equal(d.Truncate(domain.AmountScale)) {
		return decimal.Decimal{}, domain.ErrAmountPrecision
	}

	if d.GreaterThanOrEqual(domain.MaxAmount) {
		return decimal.Decimal{}, domain.ErrAmountTooLarge
	}

	return d, nil
}

func validRequest(fromID, toID, idempotencyKey string) error {
	if strings.TrimSpace(fromID) == "" || strings.TrimSpace(toID) == "" {
		return domain.ErrMissingAccountID
	}

	if fromID == toID {
		return domain.ErrSameAccount
	}

	if utf8.RuneCountInString(idempotencyKey) > domain.MaxIdempotencyKeyLen {
		return domain.ErrInvalidIdempotencyKey
	}

	return nil
}

// Transfer validates the request and then moves amount from fromID to toID.
func (s *Service) Transfer(ctx context.Context, fromID, toID, amount, idempotencyKey string) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx).With().
		Str("from_id", fromID).
		Str("to_id", toID).
		Str("amount", amount).
		Logger()

	result, err := s.transfer(ctx, fromID, toID, amount, idempotencyKey)
	if err != nil {
		l.Info().Err(err).Str("code", errorspkg.Code(err)).Msg("transfer rejected")
		return result, err
	}

	if result.Replayed {
		l.Info().Str("transaction_id", result.Transaction.ID.String()).Msg("transfer replayed")
		return result, nil
	}

	if err := s.cache.Invalidate(ctx,
		cachepkg.AccountsKey,
		cachepkg.TransactionsKey(fromID),
		cachepkg.TransactionsKey(toID),
	); err != nil {
		l.Warn().Err(err).Msg("cannot invalidate cache")
	}

	l.Info().Str("transaction_id", result.Transaction.ID.String()).Msg("transfer completed")

	return result, nil
}

func (s *Service) transfer(ctx context.Context, fromID, toID, amount, idempotencyKey string) (domain.TransferResult, error) {
	if err := validRequest(fromID, toID, idempotencyKey); err != nil {
		return domain.TransferResult{}, err
	}

	amountDecimal, err := ParseAmount(amount)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return s.repo.Transfer(ctx, domain.TransferParams{
		FromID:         fromID,
		ToID:           toID,
		Amount:         amountDecimal,
		IdempotencyKey: idempotencyKey,
	})
}
