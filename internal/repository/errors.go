package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes that surface as domain conflicts.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// isConstraintConflict reports whether the error is a unique or exclusion
// constraint violation. The bookings exclusion constraint makes the database
// the final arbiter of overlapping confirmed bookings, so violations are the
// conflict signal, not an internal error.
func isConstraintConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}
