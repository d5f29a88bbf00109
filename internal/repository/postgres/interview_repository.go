package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/interview"
)

type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

const interviewColumns = `id, candidate_id, round_type, interviewer_id, scheduled_start, scheduled_end, location, meeting_link, status, status_reason, decision, created_at, updated_at`

func (r *InterviewRepository) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	return scanInterview(row)
}

func (r *InterviewRepository) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]interview.Interview, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE candidate_id = $1 ORDER BY scheduled_start ASC`, candidateID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list interviews", err)
	}
	defer rows.Close()
	return collectInterviews(rows)
}

func (r *InterviewRepository) ListScheduled(ctx context.Context, interviewerID common.UUID, from, to time.Time) ([]interview.Interview, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE interviewer_id = $1 AND status = 'scheduled' AND scheduled_start < $3 AND scheduled_end > $2
		ORDER BY scheduled_start ASC`, interviewerID, from, to)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list scheduled interviews", err)
	}
	defer rows.Close()
	return collectInterviews(rows)
}

// Book inserts the interview after re-checking the calendar inside
// the same transaction. The interviewer's scheduled rows are locked
// first so two racing bookings serialize; the partial unique index
// and the exclusion constraint catch anything that still slips
// through, so exactly one of two identical bookings wins.
func (r *InterviewRepository) Book(ctx context.Context, iv interview.Interview) (*interview.Interview, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin booking", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT scheduled_start, scheduled_end FROM interviews
		WHERE interviewer_id = $1 AND status = 'scheduled' FOR UPDATE`, iv.InterviewerID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to lock calendar", err)
	}
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			rows.Close()
			return nil, common.NewError(common.CodeInternal, "failed to scan calendar", err)
		}
		if interview.Overlaps(iv.ScheduledStart, iv.ScheduledEnd, start, end) {
			rows.Close()
			return nil, common.NewError(common.CodeConflict, "slot overlaps an existing interview", nil)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, common.NewError(common.CodeInternal, "failed to scan calendar", err)
	}
	rows.Close()

	var open int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM interviews
		WHERE candidate_id = $1 AND round_type = $2 AND status = 'scheduled'`, iv.CandidateID, iv.RoundType).Scan(&open); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to check open rounds", err)
	}
	if open > 0 {
		return nil, common.NewError(common.CodeConflict, "candidate already has a scheduled interview for this round", nil)
	}

	iv.ID = common.NewUUID()
	iv.Status = interview.StatusScheduled
	now := time.Now().UTC()
	iv.CreatedAt = now
	iv.UpdatedAt = now
	_, err = tx.ExecContext(ctx, `INSERT INTO interviews (id, candidate_id, round_type, interviewer_id, scheduled_start, scheduled_end, location, meeting_link, status, status_reason, decision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		iv.ID, iv.CandidateID, iv.RoundType, iv.InterviewerID, iv.ScheduledStart, iv.ScheduledEnd, iv.Location, iv.MeetingLink, iv.Status, iv.StatusReason, iv.Decision, iv.CreatedAt, iv.UpdatedAt)
	if err != nil {
		if isConstraintConflict(err) {
			return nil, common.NewError(common.CodeConflict, "slot was booked by another operator", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create interview", err)
	}

	if err := tx.Commit(); err != nil {
		if isConstraintConflict(err) {
			return nil, common.NewError(common.CodeConflict, "slot was booked by another operator", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to commit booking", err)
	}
	return &iv, nil
}

func (r *InterviewRepository) Cancel(ctx context.Context, id common.UUID, reason string) (*interview.Interview, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == interview.StatusCancelled {
		return current, nil
	}
	_, err = r.db.ExecContext(ctx, `UPDATE interviews SET status = 'cancelled', status_reason = $1, updated_at = $2 WHERE id = $3`,
		reason, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to cancel interview", err)
	}
	return r.GetByID(ctx, id)
}

func (r *InterviewRepository) UpdateStatus(ctx context.Context, id common.UUID, status interview.Status, reason string) (*interview.Interview, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE interviews SET status = $1, status_reason = $2, updated_at = $3 WHERE id = $4 AND status = 'scheduled'`,
		status, reason, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update interview status", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update interview status", err)
	}
	if affected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == status {
			return current, nil
		}
		return nil, common.NewError(common.CodeConflict, "interview is not in scheduled state", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *InterviewRepository) FindScheduledByRound(ctx context.Context, candidateID common.UUID, round interview.RoundType) (*interview.Interview, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews
		WHERE candidate_id = $1 AND round_type = $2 AND status = 'scheduled'`, candidateID, round)
	return scanInterview(row)
}

func collectInterviews(rows *sql.Rows) ([]interview.Interview, error) {
	var items []interview.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *iv)
	}
	return items, nil
}

func scanInterview(row rowScanner) (*interview.Interview, error) {
	var iv interview.Interview
	if err := row.Scan(&iv.ID, &iv.CandidateID, &iv.RoundType, &iv.InterviewerID, &iv.ScheduledStart, &iv.ScheduledEnd, &iv.Location, &iv.MeetingLink, &iv.Status, &iv.StatusReason, &iv.Decision, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "interview not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load interview", err)
	}
	return &iv, nil
}
