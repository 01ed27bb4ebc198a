// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `identifier, holder_name, balance, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.Identifier,
		&a.HolderName,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE identifier = $2
RETURNING ` + accountColumns

// AddBalance changes the account's balance by amount and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, amount decimal.Decimal, identifier string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if dbpkg.Constraint(err) == "accounts_balance_check" {
			return a, domain.ErrInsufficientBalance
		}

		return a, dbpkg.Fault(ctx, err, "accountrepo.AddBalance")
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (identifier, holder_name, balance)
VALUES
    ($1, $2, $3)
RETURNING ` + accountColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, identifier, holderName string, balance decimal.Decimal) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, createQuery, identifier, holderName, balance))
	if err != nil {
		switch dbpkg.Constraint(err) {
		case "accounts_pkey":
			return a, domain.ErrIdentifierTaken
		case "accounts_holder_name_check":
			return a, domain.ErrEmptyHolderName
		case "accounts_balance_check":
			return a, domain.ErrInsufficientBalance
		}

		return a, dbpkg.Fault(ctx, err, "accountrepo.Create")
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE identifier = $1
`

// Get returns the account with the given identifier.
func (r *RepoPGS) Get(ctx context.Context, identifier string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, identifier))
	if err != nil {
		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, dbpkg.Fault(ctx, err, "accountrepo.Get")
	}

	return a, nil
}

const lockQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE identifier = ANY($1)
ORDER BY identifier
FOR UPDATE
`

// Lock locks the rows of the given accounts until the end of the surrounding
// transaction and returns the found accounts by identifier.
//
// Rows are locked in identifier order so concurrent transfers cannot deadlock.
func (r *RepoPGS) Lock(ctx context.Context, identifiers ...string) (map[string]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, lockQuery, pq.Array(identifiers))
	if err != nil {
		return nil, dbpkg.Fault(ctx, err, "accountrepo.Lock")
	}
	defer rows.Close()

	items := make(map[string]domain.Account, len(identifiers))

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbpkg.Fault(ctx, err, "accountrepo.Lock")
		}

		items[a.Identifier] = a
	}

	if err := rows.Err(); err != nil {
		return nil, dbpkg.Fault(ctx, err, "accountrepo.Lock")
	}

	return items, nil
}

const listQuery = `
SELECT ` + accountColumns + `
FROM accounts
ORDER BY created_at DESC, seq DESC
`

// List returns all accounts, most recently created first.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, dbpkg.Fault(ctx, err, "accountrepo.List")
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbpkg.Fault(ctx, err, "accountrepo.List")
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		return nil, dbpkg.Fault(ctx, err, "accountrepo.List")
	}

	if err := rows.Err(); err != nil {
		return nil, dbpkg.Fault(ctx, err, "accountrepo.List")
	}

	return items, nil
}
