package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// MapError translates database errors to domain errors: sql.ErrNoRows
// becomes notFoundErr and a unique violation becomes duplicateErr. Other
// errors, including domain errors returned from inside WithTx, pass through.
func MapError(err error, notFoundErr, duplicateErr error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFoundErr
	case sqlState(err) == pgUniqueViolation:
		return duplicateErr
	default:
		return err
	}
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation, such as a row referencing a document deleted mid-request.
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == pgForeignKeyViolation
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
