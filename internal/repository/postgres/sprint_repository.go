package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/sprint"
)

type SprintRepository struct {
	db *sql.DB
}

func NewSprintRepository(db *sql.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

const sprintColumns = `id, candidate_id, template_id, assigned_at, due_at, status, reviewer_id, score, decision, created_at, updated_at`

func (r *SprintRepository) Create(ctx context.Context, a sprint.Assignment) (*sprint.Assignment, error) {
	a.ID = common.NewUUID()
	a.Status = sprint.StatusAssigned
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.AssignedAt.IsZero() {
		a.AssignedAt = now
	}
	var reviewerID common.UUID
	if a.ReviewerID != nil {
		reviewerID = *a.ReviewerID
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO sprint_assignments (id, candidate_id, template_id, assigned_at, due_at, status, reviewer_id, score, decision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.CandidateID, a.TemplateID, a.AssignedAt, a.DueAt, a.Status, nullableUUID(reviewerID), a.Score, a.Decision, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isConstraintConflict(err) {
			return nil, common.NewError(common.CodeConflict, "candidate already has an active sprint", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create sprint assignment", err)
	}
	return &a, nil
}

func (r *SprintRepository) GetByID(ctx context.Context, id common.UUID) (*sprint.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprint_assignments WHERE id = $1`, id)
	return scanSprint(row)
}

func (r *SprintRepository) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]sprint.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sprintColumns+` FROM sprint_assignments WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list sprint assignments", err)
	}
	defer rows.Close()
	var items []sprint.Assignment
	for rows.Next() {
		a, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, nil
}

func (r *SprintRepository) FindActiveByCandidate(ctx context.Context, candidateID common.UUID) (*sprint.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprint_assignments
		WHERE candidate_id = $1 AND status NOT IN ('completed', 'cancelled')`, candidateID)
	return scanSprint(row)
}

func (r *SprintRepository) FindLatestByCandidate(ctx context.Context, candidateID common.UUID) (*sprint.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprint_assignments
		WHERE candidate_id = $1 ORDER BY created_at DESC LIMIT 1`, candidateID)
	return scanSprint(row)
}

func (r *SprintRepository) UpdateStatus(ctx context.Context, id common.UUID, from, to sprint.Status, score *int, decision sprint.Decision) (*sprint.Assignment, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE sprint_assignments
		SET status = $1, score = COALESCE($2, score), decision = $3, updated_at = $4
		WHERE id = $5 AND status = $6`,
		to, score, decision, time.Now().UTC(), id, from)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update sprint status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update sprint status", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeConflict, "sprint status changed concurrently", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *SprintRepository) AssignReviewer(ctx context.Context, id common.UUID, reviewerID common.UUID) (*sprint.Assignment, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE sprint_assignments SET reviewer_id = $1, updated_at = $2
		WHERE id = $3 AND status NOT IN ('completed', 'cancelled')`,
		reviewerID, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to assign reviewer", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to assign reviewer", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, common.NewError(common.CodeConflict, "sprint assignment is terminal", nil)
	}
	return r.GetByID(ctx, id)
}

func scanSprint(row rowScanner) (*sprint.Assignment, error) {
	var a sprint.Assignment
	var reviewer sql.NullString
	var score sql.NullInt64
	if err := row.Scan(&a.ID, &a.CandidateID, &a.TemplateID, &a.AssignedAt, &a.DueAt, &a.Status, &reviewer, &score, &a.Decision, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load sprint assignment", err)
	}
	if reviewer.Valid {
		id := common.UUID(reviewer.String)
		a.ReviewerID = &id
	}
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	return &a, nil
}
