package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"talentflow/internal/common"
)

func TestNullableUUIDMapsZeroToNull(t *testing.T) {
	if got := nullableUUID(""); got != nil {
		t.Fatalf("expected nil for the zero uuid, got %v", got)
	}
	id := common.NewUUID()
	got := nullableUUID(id)
	if got != id {
		t.Fatalf("expected %s to pass through, got %v", id, got)
	}
}

func TestIsConstraintConflict(t *testing.T) {
	unique := &pgconn.PgError{Code: sqlstateUniqueViolation}
	if !isConstraintConflict(fmt.Errorf("insert: %w", unique)) {
		t.Fatalf("expected unique violation to register as conflict")
	}
	exclusion := &pgconn.PgError{Code: sqlstateExclusionViolation}
	if !isConstraintConflict(exclusion) {
		t.Fatalf("expected exclusion violation to register as conflict")
	}
	if isConstraintConflict(&pgconn.PgError{Code: "42804"}) {
		t.Fatalf("a datatype mismatch is not a conflict")
	}
	if isConstraintConflict(errors.New("broken pipe")) {
		t.Fatalf("plain errors are not conflicts")
	}
}
