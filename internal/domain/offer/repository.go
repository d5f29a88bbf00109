package offer

import (
	"context"

	"talentflow/internal/common"
)

type Repository interface {
	// Create fails with CodeConflict while the candidate still has an
	// offer outside the terminal set (partial unique index backstop).
	Create(ctx context.Context, o Offer) (*Offer, error)
	GetByID(ctx context.Context, id common.UUID) (*Offer, error)
	ListByCandidate(ctx context.Context, candidateID common.UUID) ([]Offer, error)
	FindOpenByCandidate(ctx context.Context, candidateID common.UUID) (*Offer, error)
	// Update rewrites the editable fields; callers gate on draft
	// status before reaching here.
	Update(ctx context.Context, o Offer) (*Offer, error)
	// UpdateStatus applies the optimistic from-status guard as part of
	// the write and fails with CodeConflict on a stale expectation.
	UpdateStatus(ctx context.Context, id common.UUID, from, to Status, note string) (*Offer, error)
}
