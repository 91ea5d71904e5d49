package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("invalid reference")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// NotFoundError reports a missing row; errors.Is(err, ErrNotFound) holds for it.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// classify maps constraint violations onto the package sentinels, keeping the
// driver error in the chain.
func classify(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %w", msg, ErrAlreadyExists, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", msg, ErrInvalidReference, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
