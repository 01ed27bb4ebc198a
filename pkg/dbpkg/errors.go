package dbpkg

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Constraint returns the name of the constraint violated by err, if any.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

// Fault logs an infrastructure error with its stack and returns errorspkg.ErrStorage.
func Fault(ctx context.Context, err error, op string) error {
	zerolog.Ctx(ctx).Error().Stack().Err(errors.WithStack(err)).Str("op", op).Msg("storage fault")
	return errorspkg.ErrStorage
}
