package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
)

type CandidateRepository struct {
	db *sql.DB
}

func NewCandidateRepository(db *sql.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, name, email, phone, opening_id, current_stage, needs_hr_review, docs_pending, created_at, updated_at`

func (r *CandidateRepository) Create(ctx context.Context, cand candidate.Candidate) (*candidate.Candidate, error) {
	cand.ID = common.NewUUID()
	if cand.CurrentStage == "" {
		cand.CurrentStage = candidate.StageEnquiry
	}
	now := time.Now().UTC()
	cand.CreatedAt = now
	cand.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO candidates (id, name, email, phone, opening_id, current_stage, needs_hr_review, docs_pending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cand.ID, cand.Name, cand.Email, cand.Phone, nullableUUID(cand.OpeningID), cand.CurrentStage, cand.NeedsHRReview, pq.Array(cand.DocsPending), cand.CreatedAt, cand.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create candidate", err)
	}
	return &cand, nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id common.UUID) (*candidate.Candidate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

func (r *CandidateRepository) List(ctx context.Context, stage candidate.Stage, limit, offset int) ([]candidate.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	args := []any{limit, offset}
	if stage != "" {
		query = `SELECT ` + candidateColumns + ` FROM candidates WHERE current_stage = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = []any{stage, limit, offset}
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list candidates", err)
	}
	defer rows.Close()
	var items []candidate.Candidate
	for rows.Next() {
		cand, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *cand)
	}
	return items, nil
}

// Transition is the single write path for current_stage: the guarded
// projection update and the event append commit together or not at
// all.
func (r *CandidateRepository) Transition(ctx context.Context, event candidate.StageEvent) (*candidate.Candidate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transition", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `UPDATE candidates SET current_stage = $1, updated_at = $2 WHERE id = $3 AND current_stage = $4`,
		event.ToStage, now, event.CandidateID, event.FromStage)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update stage", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update stage", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1)`, event.CandidateID).Scan(&exists); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to update stage", err)
		}
		if !exists {
			return nil, common.NewError(common.CodeNotFound, "candidate not found", nil)
		}
		return nil, common.NewError(common.CodeConflict, "candidate stage changed concurrently", nil)
	}

	event.ID = common.NewUUID()
	event.CreatedAt = now
	_, err = tx.ExecContext(ctx, `INSERT INTO stage_events (id, candidate_id, from_stage, to_stage, decision, note, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.CandidateID, event.FromStage, event.ToStage, event.Decision, event.Note, event.Actor, event.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to append stage event", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit transition", err)
	}
	return r.GetByID(ctx, event.CandidateID)
}

func (r *CandidateRepository) ListEvents(ctx context.Context, candidateID common.UUID) ([]candidate.StageEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, candidate_id, from_stage, to_stage, decision, note, actor, created_at
		FROM stage_events WHERE candidate_id = $1 ORDER BY created_at ASC`, candidateID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stage events", err)
	}
	defer rows.Close()
	var items []candidate.StageEvent
	for rows.Next() {
		var ev candidate.StageEvent
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.FromStage, &ev.ToStage, &ev.Decision, &ev.Note, &ev.Actor, &ev.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan stage event", err)
		}
		items = append(items, ev)
	}
	return items, nil
}

func (r *CandidateRepository) SetNeedsHRReview(ctx context.Context, id common.UUID, needs bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE candidates SET needs_hr_review = $1, updated_at = $2 WHERE id = $3`,
		needs, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update hr review flag", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*candidate.Candidate, error) {
	var cand candidate.Candidate
	var openingID sql.NullString
	var docs pq.StringArray
	if err := row.Scan(&cand.ID, &cand.Name, &cand.Email, &cand.Phone, &openingID, &cand.CurrentStage, &cand.NeedsHRReview, &docs, &cand.CreatedAt, &cand.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "candidate not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load candidate", err)
	}
	if openingID.Valid {
		cand.OpeningID = common.UUID(openingID.String)
	}
	cand.DocsPending = docs
	return &cand, nil
}
