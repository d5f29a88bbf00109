package app

import (
	"context"
	"testing"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/offer"
	"talentflow/internal/domain/sprint"
)

func newStageFixture() (*StageService, *fakeCandidateRepo, *fakeSprintRepo, *fakeOfferRepo, *captureNotifier) {
	candidates := newFakeCandidateRepo()
	sprints := newFakeSprintRepo()
	offers := newFakeOfferRepo()
	notifier := &captureNotifier{}
	service := NewStageService(candidates, sprints, offers, notifier, testLogger())
	return service, candidates, sprints, offers, notifier
}

func TestStageServiceTransition_AdvanceFollowsPipeline(t *testing.T) {
	service, candidates, _, _, notifier := newStageFixture()
	cand := candidates.seed(candidate.StageEnquiry)
	actor := common.NewUUID()

	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageHRScreening,
		Decision:    candidate.DecisionAdvance,
		Actor:       actor,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageHRScreening {
		t.Fatalf("expected hr_screening, got %s", updated.CurrentStage)
	}

	events, err := service.History(context.Background(), cand.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.ToStage != updated.CurrentStage {
		t.Fatalf("current stage %s does not match latest event target %s", updated.CurrentStage, last.ToStage)
	}
	if last.FromStage != candidate.StageEnquiry || last.Actor != actor {
		t.Fatalf("unexpected event %+v", last)
	}
	if notifier.count() == 0 {
		t.Fatal("expected a change notification")
	}
}

func TestStageServiceTransition_AdvanceCannotSkipStages(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageEnquiry)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL2Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestStageServiceTransition_UnknownStageRejected(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageEnquiry)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     "final_boss",
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStageServiceTransition_PendingDocsBlockScreeningExit(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageHRScreening)
	candidates.byID[cand.ID].DocsPending = []string{"pan_card"}

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL2Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure, got %v", err)
	}

	candidates.byID[cand.ID].DocsPending = nil
	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL2Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageL2Shortlist {
		t.Fatalf("expected l2_shortlist, got %s", updated.CurrentStage)
	}
}

func TestStageServiceTransition_SprintExitGate(t *testing.T) {
	service, candidates, sprints, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageSprint)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL1Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure without an assignment, got %v", err)
	}

	assignment, err := sprints.Create(context.Background(), sprint.Assignment{
		CandidateID: cand.ID,
		TemplateID:  common.NewUUID(),
		DueAt:       time.Now().Add(72 * time.Hour).UTC(),
	})
	if err != nil {
		t.Fatalf("expected assignment created, got %v", err)
	}

	_, err = service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL1Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure while sprint is open, got %v", err)
	}

	sprints.byID[assignment.ID].Status = sprint.StatusCompleted
	sprints.byID[assignment.ID].Decision = sprint.DecisionReject
	_, err = service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL1Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure on a reject decision, got %v", err)
	}

	sprints.byID[assignment.ID].Decision = sprint.DecisionAdvance
	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageL1Shortlist,
		Decision:    candidate.DecisionAdvance,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageL1Shortlist {
		t.Fatalf("expected l1_shortlist, got %s", updated.CurrentStage)
	}
}

func TestStageServiceTransition_HireRequiresAcceptedOffer(t *testing.T) {
	service, candidates, _, offers, _ := newStageFixture()
	cand := candidates.seed(candidate.StageOffer)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageHired,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure without an offer, got %v", err)
	}

	created, err := offers.Create(context.Background(), offer.Offer{CandidateID: cand.ID, Designation: "SDE II", Currency: "INR"})
	if err != nil {
		t.Fatalf("expected offer created, got %v", err)
	}
	offers.byID[created.ID].Status = offer.StatusSent
	_, err = service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageHired,
		Decision:    candidate.DecisionAdvance,
	})
	if !common.Is(err, common.CodePrecondition) {
		t.Fatalf("expected precondition failure on a sent offer, got %v", err)
	}

	offers.byID[created.ID].Status = offer.StatusAccepted
	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageHired,
		Decision:    candidate.DecisionAdvance,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageHired {
		t.Fatalf("expected hired, got %s", updated.CurrentStage)
	}
}

func TestStageServiceTransition_RejectFromAnyNonTerminalStage(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageL2Feedback)

	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageRejected,
		Decision:    candidate.DecisionReject,
		Note:        "weak system design round",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageRejected {
		t.Fatalf("expected rejected, got %s", updated.CurrentStage)
	}

	_, err = service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageRejected,
		Decision:    candidate.DecisionReject,
	})
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict on terminal candidate, got %v", err)
	}
}

func TestStageServiceTransition_SkipRequiresCapability(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageEnquiry)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID: cand.ID,
		ToStage:     candidate.StageSprint,
		Decision:    candidate.DecisionSkip,
	})
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden without capability, got %v", err)
	}

	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID:  cand.ID,
		ToStage:      candidate.StageSprint,
		Decision:     candidate.DecisionSkip,
		Capabilities: map[string]bool{CapSkip: true},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageSprint {
		t.Fatalf("expected sprint, got %s", updated.CurrentStage)
	}
}

func TestStageServiceTransition_LeavingRejectedNeedsOverride(t *testing.T) {
	service, candidates, _, _, _ := newStageFixture()
	cand := candidates.seed(candidate.StageRejected)

	_, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID:  cand.ID,
		ToStage:      candidate.StageHRScreening,
		Decision:     candidate.DecisionSkip,
		Capabilities: map[string]bool{CapSkip: true},
	})
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden without override, got %v", err)
	}

	updated, err := service.Transition(context.Background(), TransitionRequest{
		CandidateID:  cand.ID,
		ToStage:      candidate.StageHRScreening,
		Decision:     candidate.DecisionSkip,
		Capabilities: map[string]bool{CapSkip: true, CapOverrideReject: true},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.CurrentStage != candidate.StageHRScreening {
		t.Fatalf("expected hr_screening, got %s", updated.CurrentStage)
	}
}

func TestStageServiceCreate_ValidatesAndStartsAtEnquiry(t *testing.T) {
	service, _, _, _, _ := newStageFixture()

	_, err := service.Create(context.Background(), candidate.Candidate{Email: "no-name@example.com"}, common.NewUUID())
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	created, err := service.Create(context.Background(), candidate.Candidate{
		Name:         "Ravi Iyer",
		Email:        "ravi@example.com",
		CurrentStage: candidate.StageOffer,
	}, common.NewUUID())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.CurrentStage != candidate.StageEnquiry {
		t.Fatalf("expected new candidates to start at enquiry, got %s", created.CurrentStage)
	}
}
