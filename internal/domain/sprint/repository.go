package sprint

import (
	"context"

	"talentflow/internal/common"
)

type Repository interface {
	// Create fails with CodeConflict while an active (non-terminal)
	// assignment exists for the candidate.
	Create(ctx context.Context, a Assignment) (*Assignment, error)
	GetByID(ctx context.Context, id common.UUID) (*Assignment, error)
	ListByCandidate(ctx context.Context, candidateID common.UUID) ([]Assignment, error)
	FindActiveByCandidate(ctx context.Context, candidateID common.UUID) (*Assignment, error)
	FindLatestByCandidate(ctx context.Context, candidateID common.UUID) (*Assignment, error)
	// UpdateStatus applies the optimistic from-status guard as part of
	// the write.
	UpdateStatus(ctx context.Context, id common.UUID, from, to Status, score *int, decision Decision) (*Assignment, error)
	AssignReviewer(ctx context.Context, id common.UUID, reviewerID common.UUID) (*Assignment, error)
}
