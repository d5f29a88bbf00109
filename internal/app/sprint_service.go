package app

import (
	"context"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/sprint"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

type SprintService struct {
	sprints    sprint.Repository
	candidates candidate.Repository
	notifier   notify.Notifier
	logger     *observability.Logger
	now        func() time.Time
}

func NewSprintService(sprints sprint.Repository, candidates candidate.Repository, notifier notify.Notifier, logger *observability.Logger) *SprintService {
	return &SprintService{sprints: sprints, candidates: candidates, notifier: notifier, logger: logger, now: time.Now}
}

func (s *SprintService) Assign(ctx context.Context, candidateID, templateID common.UUID, dueAt time.Time) (*sprint.Assignment, error) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if cand.CurrentStage != candidate.StageSprint {
		return nil, common.NewError(common.CodePrecondition, "candidate is not in the sprint stage", nil)
	}
	if templateID.IsZero() {
		return nil, common.NewValidationError("invalid template", map[string]string{"template_id": "template_id is required"})
	}
	if !dueAt.After(s.now().UTC()) {
		return nil, common.NewValidationError("invalid deadline", map[string]string{"due_at": "due_at must be in the future"})
	}
	if _, err := s.sprints.FindActiveByCandidate(ctx, candidateID); err == nil {
		return nil, common.NewError(common.CodeConflict, "candidate already has an active sprint", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.sprints.Create(ctx, sprint.Assignment{
		CandidateID: candidateID,
		TemplateID:  templateID,
		DueAt:       dueAt.UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: candidateID, Kind: "sprint"})
	return created, nil
}

type SprintUpdateRequest struct {
	ID       common.UUID
	Status   sprint.Status
	Score    *int
	Decision sprint.Decision
}

// UpdateStatus walks the assignment through its lifecycle. Completing
// requires a decision; only an advance decision later satisfies the
// sprint stage exit.
func (s *SprintService) UpdateStatus(ctx context.Context, req SprintUpdateRequest) (*sprint.Assignment, error) {
	if !sprint.IsKnownStatus(req.Status) {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "unknown sprint status"})
	}
	current, err := s.sprints.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if current.Status == req.Status {
		return current, nil
	}
	if !sprint.AllowedTransition(current.Status, req.Status) {
		return nil, common.NewError(common.CodeConflict, "illegal sprint transition", nil)
	}
	decision := sprint.Decision("")
	if req.Status == sprint.StatusCompleted {
		if !sprint.IsKnownDecision(req.Decision) {
			return nil, common.NewValidationError("invalid decision", map[string]string{"decision": "completed sprints need a decision of advance, reject, or keep_warm"})
		}
		decision = req.Decision
	}
	updated, err := s.sprints.UpdateStatus(ctx, req.ID, current.Status, req.Status, req.Score, decision)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: updated.CandidateID, Kind: "sprint"})
	s.logger.Info("sprint transition",
		"sprint", updated.ID.String(),
		"from", string(current.Status),
		"to", string(req.Status))
	return updated, nil
}

// AssignReviewer is a side-channel mutation, legal in any
// non-terminal state.
func (s *SprintService) AssignReviewer(ctx context.Context, id, reviewerID common.UUID) (*sprint.Assignment, error) {
	if reviewerID.IsZero() {
		return nil, common.NewValidationError("invalid reviewer", map[string]string{"reviewer_id": "reviewer_id is required"})
	}
	updated, err := s.sprints.AssignReviewer(ctx, id, reviewerID)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: updated.CandidateID, Kind: "sprint"})
	return updated, nil
}

func (s *SprintService) Get(ctx context.Context, id common.UUID) (*sprint.Assignment, error) {
	return s.sprints.GetByID(ctx, id)
}

func (s *SprintService) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]sprint.Assignment, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.sprints.ListByCandidate(ctx, candidateID)
}
