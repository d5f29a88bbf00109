package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"talentflow/internal/common"
)

const (
	sqlstateUniqueViolation    = "23505"
	sqlstateExclusionViolation = "23P01"
)

// isConstraintConflict reports whether err is a unique or exclusion
// violation, i.e. a racing writer got there first.
func isConstraintConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateUniqueViolation || pgErr.Code == sqlstateExclusionViolation
}

// nullableUUID maps the zero UUID to SQL NULL. An empty string sent
// as-is for a uuid column fails the server's type check.
func nullableUUID(id common.UUID) any {
	if id.IsZero() {
		return nil
	}
	return id
}
