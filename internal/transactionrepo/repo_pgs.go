// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

var errNoConn = errors.New("transfer needs a repository created by NewRepoPGS")

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an open transaction.
//
// Transfer on a RepoPGS created this way fails with errorspkg.ErrInternal.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const transactionColumns = `id, from_id, to_id, amount, status, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.FromID,
		&t.ToID,
		&t.Amount,
		&t.Status,
		&t.CreatedAt,
	)

	return t, err
}

// CreateParams is the input data to insert a transaction record.
type CreateParams struct {
	ID             uuid.UUID
	FromID         string
	ToID           string
	Amount         decimal.Decimal
	Status         string
	IdempotencyKey string
}

const createQuery = `
INSERT INTO
    transactions (id, from_id, to_id, amount, status, idempotency_key)
VALUES
    ($1, $2, $3, $4, $5, NULLIF($6, ''))
RETURNING ` + transactionColumns

var errDuplicateKey = errors.New("duplicate idempotency key")

// Create inserts the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg CreateParams) (domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.FromID,
		arg.ToID,
		arg.Amount,
		arg.Status,
		arg.IdempotencyKey,
	)

	t, err := scanTransaction(row)
	if err != nil {
		switch dbpkg.Constraint(err) {
		case "transactions_from_id_fkey", "transactions_to_id_fkey":
			return t, domain.ErrAccountNotFound
		case "transactions_amount_check":
			return t, domain.ErrNonPositiveAmount
		case "transactions_distinct_accounts_check":
			return t, domain.ErrSameAccount
		case "transactions_idempotency_key_key":
			return t, errDuplicateKey
		}

		return t, dbpkg.Fault(ctx, err, "transactionrepo.Create")
	}

	return t, nil
}

const getByIdempotencyKeyQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE idempotency_key = $1
`

// GetByIdempotencyKey returns the transaction created with the given key.
func (r *RepoPGS) GetByIdempotencyKey(ctx context.Context, key string) (domain.Transaction, bool, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, getByIdempotencyKeyQuery, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return t, false, nil
		}

		return t, false, dbpkg.Fault(ctx, err, "transactionrepo.GetByIdempotencyKey")
	}

	return t, true, nil
}

const listByAccountQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE from_id = $1 OR to_id = $1
ORDER BY created_at DESC, seq DESC
`

// ListByAccount returns the transactions where the account is either side,
// most recent first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID)
	if err != nil {
		return nil, dbpkg.Fault(ctx, err, "transactionrepo.ListByAccount")
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, dbpkg.Fault(ctx, err, "transactionrepo.ListByAccount")
		}

		items = append(items, t)
	}

	if err := rows.Close(); err != nil {
		return nil, dbpkg.Fault(ctx, err, "transactionrepo.ListByAccount")
	}

	if err := rows.Err(); err != nil {
		return nil, dbpkg.Fault(ctx, err, "transactionrepo.ListByAccount")
	}

	return items, nil
}

// Transfer moves money between two accounts.
//
// It locks both accounts, checks the source balance, updates both balances and
// inserts a completed transaction record within a single db transaction.
// A transfer with an idempotency key that was already committed is not applied
// again; the original transaction is returned instead.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	if r.conn == nil {
		zerolog.Ctx(ctx).Error().Err(errNoConn).Msg("transactionrepo.Transfer")
		return domain.TransferResult{}, errorspkg.ErrInternal
	}

	result, err := r.transfer(ctx, arg)
	if err == errDuplicateKey {
		// A concurrent request with the same key committed first.
		return r.replay(ctx, arg)
	}

	return result, err
}

func (r *RepoPGS) transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferResult

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return result, dbpkg.Fault(ctx, err, "transactionrepo.Transfer.begin")
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Msg("rollback failed")
		}
	}()

	txRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	if arg.IdempotencyKey != "" {
		result, found, err := txRepo.replayIfExists(ctx, arg)
		if err != nil || found {
			return result, err
		}
	}

	accounts, err := accountRepo.Lock(ctx, arg.FromID, arg.ToID)
	if err != nil {
		return result, err
	}

	from, ok := accounts[arg.FromID]
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	if _, ok := accounts[arg.ToID]; !ok {
		return result, domain.ErrAccountNotFound
	}

	if from.Balance.LessThan(arg.Amount) {
		return result, domain.ErrInsufficientBalance
	}

	result.FromAccount, err = accountRepo.AddBalance(ctx, arg.Amount.Neg(), arg.FromID)
	if err != nil {
		return result, err
	}

	result.ToAccount, err = accountRepo.AddBalance(ctx, arg.Amount, arg.ToID)
	if err != nil {
		return result, err
	}

	result.Transaction, err = txRepo.Create(ctx, CreateParams{
		ID:             uuid.New(),
		FromID:         arg.FromID,
		ToID:           arg.ToID,
		Amount:         arg.Amount,
		Status:         domain.StatusCompleted,
		IdempotencyKey: arg.IdempotencyKey,
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.TransferResult{}, dbpkg.Fault(ctx, err, "transactionrepo.Transfer.commit")
	}

	return result, nil
}

func (r *RepoPGS) replayIfExists(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, bool, error) {
	t, found, err := r.GetByIdempotencyKey(ctx, arg.IdempotencyKey)
	if err != nil || !found {
		return domain.TransferResult{}, false, err
	}

	if !arg.SameRequest(t) {
		return domain.TransferResult{}, true, domain.ErrIdempotencyKeyReused
	}

	return domain.TransferResult{Transaction: t, Replayed: true}, true, nil
}

func (r *RepoPGS) replay(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	result, found, err := r.replayIfExists(ctx, arg)
	if err != nil {
		return result, err
	}

	if !found {
		return result, dbpkg.Fault(ctx, errDuplicateKey, "transactionrepo.Transfer.replay")
	}

	return result, nil
}
