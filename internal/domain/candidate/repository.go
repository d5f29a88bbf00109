package candidate

import (
	"context"

	"talentflow/internal/common"
)

type Repository interface {
	Create(ctx context.Context, cand Candidate) (*Candidate, error)
	GetByID(ctx context.Context, id common.UUID) (*Candidate, error)
	List(ctx context.Context, stage Stage, limit, offset int) ([]Candidate, error)
	// Transition applies the optimistic from-stage guard: the stage
	// projection is updated and the event appended in one transaction,
	// and the whole unit fails with CodeConflict when current_stage no
	// longer equals event.FromStage.
	Transition(ctx context.Context, event StageEvent) (*Candidate, error)
	ListEvents(ctx context.Context, candidateID common.UUID) ([]StageEvent, error)
	SetNeedsHRReview(ctx context.Context, id common.UUID, needs bool) error
}
