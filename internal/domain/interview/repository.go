package interview

import (
	"context"
	"time"

	"talentflow/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*Interview, error)
	ListByCandidate(ctx context.Context, candidateID common.UUID) ([]Interview, error)
	// ListScheduled returns the interviewer's scheduled rows between
	// from and to. Cancelled rows are excluded: a cancelled window is
	// immediately bookable again.
	ListScheduled(ctx context.Context, interviewerID common.UUID, from, to time.Time) ([]Interview, error)
	// Book re-checks the overlap condition and the one-scheduled-per-
	// round invariant inside the same transaction as the insert; a
	// lost race fails with CodeConflict.
	Book(ctx context.Context, iv Interview) (*Interview, error)
	// Cancel is idempotent: re-cancelling an already cancelled
	// interview returns the row unchanged.
	Cancel(ctx context.Context, id common.UUID, reason string) (*Interview, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status, reason string) (*Interview, error)
	FindScheduledByRound(ctx context.Context, candidateID common.UUID, round RoundType) (*Interview, error)
}
