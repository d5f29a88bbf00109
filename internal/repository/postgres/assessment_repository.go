package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/assessment"
)

type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, interview_id, schema, data, status, locked, created_at, updated_at`

func (r *AssessmentRepository) GetByInterview(ctx context.Context, interviewID common.UUID) (*assessment.Assessment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE interview_id = $1`, interviewID)
	return scanAssessment(row)
}

// Upsert writes the draft payload. The locked = FALSE predicate is
// the immutability guard: once a row is locked no write path here can
// touch it again.
func (r *AssessmentRepository) Upsert(ctx context.Context, a assessment.Assessment) (*assessment.Assessment, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `INSERT INTO assessments (id, interview_id, schema, data, status, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'draft', FALSE, $5, $5)
		ON CONFLICT (interview_id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		WHERE assessments.locked = FALSE`,
		common.NewUUID(), a.InterviewID, a.Schema, []byte(a.Data), now)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to save assessment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to save assessment", err)
	}
	if affected == 0 {
		return nil, common.NewError(common.CodeConflict, "assessment is locked", nil)
	}
	return r.GetByInterview(ctx, a.InterviewID)
}

func (r *AssessmentRepository) Submit(ctx context.Context, a assessment.Assessment) (*assessment.Assessment, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `INSERT INTO assessments (id, interview_id, schema, data, status, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'submitted', TRUE, $5, $5)
		ON CONFLICT (interview_id) DO UPDATE
		SET data = EXCLUDED.data, status = 'submitted', locked = TRUE, updated_at = EXCLUDED.updated_at
		WHERE assessments.locked = FALSE`,
		common.NewUUID(), a.InterviewID, a.Schema, []byte(a.Data), now)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to submit assessment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to submit assessment", err)
	}
	if affected == 0 {
		return nil, common.NewError(common.CodeConflict, "assessment is locked", nil)
	}
	return r.GetByInterview(ctx, a.InterviewID)
}

func scanAssessment(row rowScanner) (*assessment.Assessment, error) {
	var a assessment.Assessment
	var data []byte
	if err := row.Scan(&a.ID, &a.InterviewID, &a.Schema, &data, &a.Status, &a.Locked, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "assessment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load assessment", err)
	}
	a.Data = data
	return &a, nil
}
