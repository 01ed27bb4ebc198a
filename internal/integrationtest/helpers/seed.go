// Package helpers provides seeding helpers shared by integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/ibanpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

var generator, _ = ibanpkg.NewGenerator("PK", "DL01")

// RandomIdentifier returns a fresh valid account identifier.
func RandomIdentifier() string {
	return generator.Generate()
}

// SeedAccount creates an account with a random holder name and the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	identifier := RandomIdentifier()
	holderName := randompkg.HolderName()

	account, err := accountrepo.NewRepoPGS(db).
		Create(context.Background(), identifier, holderName, decimal.RequireFromString(balance))
	if err != nil {
		t.Fatalf("accountRepo.Create(ctx, %v, %v, %v) returned error: %v", identifier, holderName, balance, err)
	}

	return account
}

// SeedAccountWith1000Balance creates an account holding 1000.
func SeedAccountWith1000Balance(t *testing.T, db dbpkg.SQLInterface) domain.Account {
	t.Helper()

	return SeedAccount(t, db, "1000")
}
