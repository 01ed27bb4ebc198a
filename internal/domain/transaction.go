package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Transaction statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AmountScale is the number of decimal places kept by the NUMERIC(19,4) columns.
const AmountScale = 4

// MaxAmount is the exclusive upper bound of a transfer amount.
var MaxAmount = decimal.New(1, 15)

// MaxIdempotencyKeyLen is the maximum length of a client idempotency key.
const MaxIdempotencyKeyLen = 64

var (
	// ErrMissingAccountID indicates that an account identifier was not given.
	ErrMissingAccountID = errorspkg.New(errorspkg.ErrValidation, "account identifier is required")
	// ErrSameAccount indicates a transfer from an account to itself.
	ErrSameAccount = errorspkg.New(errorspkg.ErrValidation, "cannot transfer to the same account")
	// ErrInvalidAmount indicates an amount that is not a finite decimal number.
	ErrInvalidAmount = errorspkg.New(errorspkg.ErrValidation, "invalid amount")
	// ErrNonPositiveAmount indicates a zero or negative amount.
	ErrNonPositiveAmount = errorspkg.New(errorspkg.ErrValidation, "amount must be positive")
	// ErrAmountPrecision indicates an amount with more than AmountScale decimals.
	ErrAmountPrecision = errorspkg.New(errorspkg.ErrValidation, "amount has too many decimal places")
	// ErrAmountTooLarge indicates an amount not less than MaxAmount.
	ErrAmountTooLarge = errorspkg.New(errorspkg.ErrValidation, "amount is too large")
	// ErrInvalidIdempotencyKey indicates an idempotency key over MaxIdempotencyKeyLen characters.
	ErrInvalidIdempotencyKey = errorspkg.New(errorspkg.ErrValidation, "idempotency key is too long")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errorspkg.New(errorspkg.ErrInsufficientFunds, "insufficient balance")
	// ErrIdempotencyKeyReused indicates that the key was already used for a different transfer.
	ErrIdempotencyKeyReused = errorspkg.New(errorspkg.ErrConflict, "idempotency key was used for a different transfer")
)

// Transaction records one funds movement between two accounts.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	FromID    string          `json:"fromId"`
	ToID      string          `json:"toId"`
	Amount    decimal.Decimal `json:"amount"` // always positive
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TransferParams is the validated input of the transfer transaction.
type TransferParams struct {
	FromID         string
	ToID           string
	Amount         decimal.Decimal
	IdempotencyKey string
}

// SameRequest reports whether t was created by a transfer with the same parameters.
func (p TransferParams) SameRequest(t Transaction) bool {
	return p.FromID == t.FromID && p.ToID == t.ToID && p.Amount.Equal(t.Amount)
}

// TransferResult is the result of the transfer transaction.
//
// A replayed result carries only the original transaction.
type TransferResult struct {
	Transaction Transaction `json:"transaction"`
	FromAccount Account     `json:"fromAccount"`
	ToAccount   Account     `json:"toAccount"`
	Replayed    bool        `json:"replayed"`
}
