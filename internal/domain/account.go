// Package domain provides definitions of all entities.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// MaxHolderNameLen is the maximum length of an account holder name.
const MaxHolderNameLen = 100

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errorspkg.New(errorspkg.ErrNotFound, "account not found")
	// ErrEmptyHolderName indicates a missing or blank holder name.
	ErrEmptyHolderName = errorspkg.New(errorspkg.ErrValidation, "holder name is required")
	// ErrHolderNameTooLong indicates a holder name over MaxHolderNameLen characters.
	ErrHolderNameTooLong = errorspkg.New(errorspkg.ErrValidation, "holder name is too long")
	// ErrIdentifierTaken indicates that the generated identifier is already in use.
	ErrIdentifierTaken = errorspkg.New(errorspkg.ErrConflict, "account identifier already exists")
)

// Account holds a named balance.
type Account struct {
	Identifier string          `json:"identifier"`
	HolderName string          `json:"holderName"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"createdAt"`
}
