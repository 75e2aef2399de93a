package storage

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Storage error constants
var (
	// ErrCaseDefinitionNotFound is returned when a case definition is not found
	ErrCaseDefinitionNotFound = errors.New("case definition not found")

	// ErrExamineNotFound is returned when an examine is not found
	ErrExamineNotFound = errors.New("examine not found")

	// Generic storage errors

	// ErrNotFound is a generic "not found" error
	ErrNotFound = errors.New("not found")

	// ErrDatabaseClosed is returned when attempting to use a closed database connection
	ErrDatabaseClosed = errors.New("database is closed")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("constraint violation")
)

// Postgres SQLSTATE codes for integrity violations
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// isConstraintViolation reports whether err is an integrity constraint failure
// from either supported driver.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgUniqueViolation, pgCheckViolation:
			return true
		}
		return false
	}

	return strings.Contains(err.Error(), "constraint failed")
}
