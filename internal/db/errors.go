package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

// SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// translate maps driver errors onto the models sentinels. Errors that are
// already sentinels, or unknown ones, pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrNotFound)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w", pqErr.Message, models.ErrConflict)
	}
	return err
}

// notFound wraps sql.ErrNoRows into a named models.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return translate(err)
}
