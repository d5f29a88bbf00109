package app

import (
	"context"
	"strings"

	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/offer"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

type OfferService struct {
	offers     offer.Repository
	candidates candidate.Repository
	notifier   notify.Notifier
	logger     *observability.Logger
}

func NewOfferService(offers offer.Repository, candidates candidate.Repository, notifier notify.Notifier, logger *observability.Logger) *OfferService {
	return &OfferService{offers: offers, candidates: candidates, notifier: notifier, logger: logger}
}

// Create drafts a new offer. The one-open-offer invariant is checked
// here for a friendly error and enforced by the partial unique index
// for racing callers.
func (s *OfferService) Create(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	cand, err := s.candidates.GetByID(ctx, o.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand.CurrentStage != candidate.StageOffer {
		return nil, common.NewError(common.CodePrecondition, "candidate is not in the offer stage", nil)
	}
	if _, err := s.offers.FindOpenByCandidate(ctx, o.CandidateID); err == nil {
		return nil, common.NewError(common.CodeConflict, "candidate already has an open offer", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.offers.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: o.CandidateID, Kind: "offer"})
	return created, nil
}

// Update edits a draft offer; anything past draft is immutable except
// through the lifecycle actions.
func (s *OfferService) Update(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	current, err := s.offers.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != offer.StatusDraft {
		return nil, common.NewError(common.CodeConflict, "only draft offers are editable", nil)
	}
	updated, err := s.offers.Update(ctx, o)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: current.CandidateID, Kind: "offer"})
	return updated, nil
}

// SubmitForApproval moves draft → pending_approval after the
// mandatory field check.
func (s *OfferService) SubmitForApproval(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if strings.TrimSpace(current.Designation) == "" {
		fields["designation"] = "designation is required"
	}
	if strings.TrimSpace(current.Currency) == "" {
		fields["currency"] = "currency is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("offer is missing mandatory fields", fields)
	}
	return s.transition(ctx, current, offer.StatusPendingApproval, "")
}

// Approve requires the approve_offer capability.
func (s *OfferService) Approve(ctx context.Context, id common.UUID, capabilities map[string]bool) (*offer.Offer, error) {
	if !capabilities[CapApproveOffer] {
		return nil, common.NewError(common.CodeForbidden, "approval requires the approve_offer capability", nil)
	}
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, offer.StatusApproved, "")
}

// Reject terminally declines the offer; editing afterwards means
// drafting a fresh one, which keeps what the approver saw on record.
func (s *OfferService) Reject(ctx context.Context, id common.UUID, reason string, capabilities map[string]bool) (*offer.Offer, error) {
	if !capabilities[CapApproveOffer] {
		return nil, common.NewError(common.CodeForbidden, "rejection requires the approve_offer capability", nil)
	}
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == offer.StatusDeclined {
		return current, nil
	}
	return s.transition(ctx, current, offer.StatusDeclined, reason)
}

// Send is one-way: the downstream mailer picks the offer up from the
// sent state and there is no way back.
func (s *OfferService) Send(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, offer.StatusSent, "")
}

func (s *OfferService) MarkAccepted(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == offer.StatusAccepted {
		return current, nil
	}
	return s.transition(ctx, current, offer.StatusAccepted, "")
}

func (s *OfferService) MarkDeclined(ctx context.Context, id common.UUID, reason string) (*offer.Offer, error) {
	current, err := s.offers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == offer.StatusDeclined {
		return current, nil
	}
	return s.transition(ctx, current, offer.StatusDeclined, reason)
}

func (s *OfferService) transition(ctx context.Context, current *offer.Offer, to offer.Status, note string) (*offer.Offer, error) {
	if !offer.AllowedTransition(current.Status, to) {
		return nil, common.NewError(common.CodeConflict, "illegal offer transition", nil)
	}
	updated, err := s.offers.UpdateStatus(ctx, current.ID, current.Status, to, note)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: current.CandidateID, Kind: "offer"})
	s.logger.Info("offer transition",
		"offer", current.ID.String(),
		"from", string(current.Status),
		"to", string(to))
	return updated, nil
}

func (s *OfferService) Get(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	return s.offers.GetByID(ctx, id)
}

func (s *OfferService) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]offer.Offer, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.offers.ListByCandidate(ctx, candidateID)
}
