package app

import (
	"context"
	"strings"

	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/offer"
	"talentflow/internal/domain/sprint"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

// Capability names carried in the token. CapSkip lets an operator
// jump the pipeline order; CapOverrideReject lets one pull a
// candidate back out of the rejected terminal.
const (
	CapSkip           = "skip"
	CapOverrideReject = "override_reject"
	CapApproveOffer   = "approve_offer"
)

type StageService struct {
	candidates candidate.Repository
	sprints    sprint.Repository
	offers     offer.Repository
	notifier   notify.Notifier
	logger     *observability.Logger
}

func NewStageService(candidates candidate.Repository, sprints sprint.Repository, offers offer.Repository, notifier notify.Notifier, logger *observability.Logger) *StageService {
	return &StageService{candidates: candidates, sprints: sprints, offers: offers, notifier: notifier, logger: logger}
}

type TransitionRequest struct {
	CandidateID  common.UUID
	ToStage      candidate.Stage
	Decision     candidate.Decision
	Note         string
	Actor        common.UUID
	Capabilities map[string]bool
}

func (r TransitionRequest) hasCapability(name string) bool {
	return r.Capabilities[name]
}

// Transition validates and applies one stage change. The legality
// rules live entirely here; the repository only enforces the
// optimistic from-stage guard.
func (s *StageService) Transition(ctx context.Context, req TransitionRequest) (*candidate.Candidate, error) {
	toStage := candidate.Stage(strings.ToLower(strings.TrimSpace(string(req.ToStage))))
	if !candidate.IsKnownStage(toStage) {
		return nil, common.NewValidationError("unknown stage", map[string]string{"to_stage": "to_stage is not in the stage vocabulary"})
	}

	cand, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}

	switch req.Decision {
	case candidate.DecisionAdvance:
		if err := s.validateAdvance(ctx, cand, toStage); err != nil {
			return nil, err
		}
	case candidate.DecisionReject:
		if toStage != candidate.StageRejected {
			return nil, common.NewValidationError("invalid target", map[string]string{"to_stage": "reject decisions must target the rejected stage"})
		}
		if candidate.IsTerminal(cand.CurrentStage) {
			return nil, common.NewError(common.CodeConflict, "candidate is already in a terminal stage", nil)
		}
	case candidate.DecisionSkip:
		if !req.hasCapability(CapSkip) {
			return nil, common.NewError(common.CodeForbidden, "skip requires the skip capability", nil)
		}
		if cand.CurrentStage == candidate.StageRejected && !req.hasCapability(CapOverrideReject) {
			return nil, common.NewError(common.CodeForbidden, "leaving rejected requires the override_reject capability", nil)
		}
	default:
		return nil, common.NewValidationError("invalid decision", map[string]string{"decision": "decision must be advance, reject, or skip"})
	}

	updated, err := s.candidates.Transition(ctx, candidate.StageEvent{
		CandidateID: cand.ID,
		FromStage:   cand.CurrentStage,
		ToStage:     toStage,
		Decision:    req.Decision,
		Note:        req.Note,
		Actor:       req.Actor,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: updated.ID, Kind: "stage"})
	s.logger.Info("stage transition",
		"candidate", updated.ID.String(),
		"from", string(cand.CurrentStage),
		"to", string(toStage),
		"decision", string(req.Decision))
	return updated, nil
}

func (s *StageService) validateAdvance(ctx context.Context, cand *candidate.Candidate, toStage candidate.Stage) error {
	if candidate.IsTerminal(cand.CurrentStage) {
		return common.NewError(common.CodeConflict, "candidate is already in a terminal stage", nil)
	}
	if candidate.Successor(cand.CurrentStage) != toStage {
		return common.NewError(common.CodeConflict, "advance must target the next pipeline stage", nil)
	}
	switch cand.CurrentStage {
	case candidate.StageHRScreening:
		if len(cand.DocsPending) > 0 {
			return common.NewError(common.CodePrecondition, "pending documents block hr screening exit", nil)
		}
	case candidate.StageSprint:
		latest, err := s.sprints.FindLatestByCandidate(ctx, cand.ID)
		if err != nil {
			if common.Is(err, common.CodeNotFound) {
				return common.NewError(common.CodePrecondition, "no sprint assignment for candidate", nil)
			}
			return err
		}
		if !latest.SatisfiesStageExit() {
			return common.NewError(common.CodePrecondition, "sprint is not completed with an advance decision", nil)
		}
	case candidate.StageOffer:
		open, err := s.latestOfferStatus(ctx, cand.ID)
		if err != nil {
			return err
		}
		if open != offer.StatusAccepted {
			return common.NewError(common.CodePrecondition, "offer must be accepted before hiring", nil)
		}
	}
	return nil
}

func (s *StageService) latestOfferStatus(ctx context.Context, candidateID common.UUID) (offer.Status, error) {
	offers, err := s.offers.ListByCandidate(ctx, candidateID)
	if err != nil {
		return "", err
	}
	if len(offers) == 0 {
		return "", common.NewError(common.CodePrecondition, "no offer exists for candidate", nil)
	}
	return offers[0].Status, nil
}

func (s *StageService) Create(ctx context.Context, cand candidate.Candidate, actor common.UUID) (*candidate.Candidate, error) {
	if strings.TrimSpace(cand.Name) == "" {
		return nil, common.NewValidationError("invalid candidate", map[string]string{"name": "name is required"})
	}
	if strings.TrimSpace(cand.Email) == "" {
		return nil, common.NewValidationError("invalid candidate", map[string]string{"email": "email is required"})
	}
	cand.CurrentStage = candidate.StageEnquiry
	created, err := s.candidates.Create(ctx, cand)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: created.ID, Kind: "candidate"})
	return created, nil
}

func (s *StageService) Get(ctx context.Context, id common.UUID) (*candidate.Candidate, error) {
	return s.candidates.GetByID(ctx, id)
}

func (s *StageService) List(ctx context.Context, stage candidate.Stage, limit, offset int) ([]candidate.Candidate, error) {
	if stage != "" && !candidate.IsKnownStage(stage) {
		return nil, common.NewValidationError("unknown stage", map[string]string{"stage": "stage is not in the stage vocabulary"})
	}
	return s.candidates.List(ctx, stage, limit, offset)
}

func (s *StageService) History(ctx context.Context, id common.UUID) ([]candidate.StageEvent, error) {
	if _, err := s.candidates.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.candidates.ListEvents(ctx, id)
}

func (s *StageService) SetNeedsHRReview(ctx context.Context, id common.UUID, needs bool) (*candidate.Candidate, error) {
	if _, err := s.candidates.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.candidates.SetNeedsHRReview(ctx, id, needs); err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: id, Kind: "candidate"})
	return s.candidates.GetByID(ctx, id)
}
