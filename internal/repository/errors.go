package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyExists   = errors.New("task already exists")
	ErrDatabaseConnection  = errors.New("database connection error")
	ErrInvalidData         = errors.New("invalid data provided")
	ErrConstraintViolation = errors.New("database constraint violation")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrSchemaMissing       = errors.New("todo table does not exist")
)

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// HandlePgxError translates pgx and PostgreSQL errors into the package
// sentinels. Errors that are already RepositoryErrors pass through untouched.
func HandlePgxError(op string, err error) error {
	if err == nil {
		return nil
	}

	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return WrapError(op, ErrTaskNotFound)
	}

	if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, pgx.ErrTxCommitRollback) {
		return WrapError(op, ErrTransactionFailed)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return WrapError(op, ErrTaskAlreadyExists)
		case "23502", "23503", "23514":
			return WrapError(op, ErrConstraintViolation)
		case "08000", "08003", "08006":
			return WrapError(op, ErrDatabaseConnection)
		case "22P02", "22007", "22008":
			return WrapError(op, ErrInvalidData)
		default:
			return WrapError(op, fmt.Errorf("database error [%s]: %s", pgErr.Code, pgErr.Message))
		}
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return WrapError(op, fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}

	return WrapError(op, err)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}
