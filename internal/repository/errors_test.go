package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestHandlePgxError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrTaskNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrTaskNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrTaskAlreadyExists},
		{"not null violation", &pgconn.PgError{Code: "23502"}, ErrConstraintViolation},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrConstraintViolation},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrDatabaseConnection},
		{"bad text representation", &pgconn.PgError{Code: "22P02"}, ErrInvalidData},
		{"tx closed", pgx.ErrTxClosed, ErrTransactionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandlePgxError("op", tt.err)
			require.ErrorIs(t, err, tt.want)

			var repoErr *RepositoryError
			require.True(t, errors.As(err, &repoErr))
			require.Equal(t, "op", repoErr.Op)
		})
	}
}

func TestHandlePgxError_Passthrough(t *testing.T) {
	require.NoError(t, HandlePgxError("op", nil))

	original := WrapError("inner", ErrTaskNotFound)
	require.Same(t, original, HandlePgxError("outer", original))

	err := HandlePgxError("op", context.Canceled)
	require.ErrorIs(t, err, context.Canceled)
	require.EqualError(t, err, "op: context canceled")
}

func TestHandlePgxError_UnknownPgCode(t *testing.T) {
	err := HandlePgxError("op", &pgconn.PgError{Code: "42P01", Message: "relation \"todo\" does not exist"})
	require.EqualError(t, err, `op: database error [42P01]: relation "todo" does not exist`)
}

func TestIsNotFoundError(t *testing.T) {
	require.True(t, IsNotFoundError(WrapError("get", ErrTaskNotFound)))
	require.False(t, IsNotFoundError(WrapError("get", ErrInvalidData)))
	require.False(t, IsNotFoundError(errors.New("boom")))
}
