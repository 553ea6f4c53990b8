package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// MapError converts driver errors into domain errors. A missing row or a
// foreign key pointing at a deleted row becomes notFound; a unique
// violation becomes duplicate. Anything else is returned as is.
func MapError(err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return duplicate
		case foreignKeyViolation:
			return notFound
		}
	}
	return err
}
