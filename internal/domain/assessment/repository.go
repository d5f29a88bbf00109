package assessment

import (
	"context"

	"talentflow/internal/common"
)

type Repository interface {
	GetByInterview(ctx context.Context, interviewID common.UUID) (*Assessment, error)
	// Upsert creates the row lazily on first save and otherwise
	// replaces the payload. The write carries a locked guard: it fails
	// with CodeConflict when the stored row is already locked.
	Upsert(ctx context.Context, a Assessment) (*Assessment, error)
	// Submit flips status to submitted and locked to true in the same
	// guarded write.
	Submit(ctx context.Context, a Assessment) (*Assessment, error)
}
