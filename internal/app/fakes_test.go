package app

import (
	"context"
	"sync"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/domain/assessment"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/interview"
	"talentflow/internal/domain/offer"
	"talentflow/internal/domain/sprint"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger()
}

type captureNotifier struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (n *captureNotifier) Publish(change notify.Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

type fakeCandidateRepo struct {
	mu            sync.Mutex
	byID          map[common.UUID]*candidate.Candidate
	events        map[common.UUID][]candidate.StageEvent
	transitionErr error
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{
		byID:   make(map[common.UUID]*candidate.Candidate),
		events: make(map[common.UUID][]candidate.StageEvent),
	}
}

func (r *fakeCandidateRepo) seed(stage candidate.Stage) *candidate.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cand := &candidate.Candidate{
		ID:           common.NewUUID(),
		Name:         "Asha Verma",
		Email:        "asha@example.com",
		CurrentStage: stage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[cand.ID] = cand
	return cloneCandidate(cand)
}

func (r *fakeCandidateRepo) Create(ctx context.Context, cand candidate.Candidate) (*candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cand.ID = common.NewUUID()
	now := time.Now().UTC()
	cand.CreatedAt = now
	cand.UpdatedAt = now
	r.byID[cand.ID] = &cand
	return cloneCandidate(&cand), nil
}

func (r *fakeCandidateRepo) GetByID(ctx context.Context, id common.UUID) (*candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cand := r.byID[id]
	if cand == nil {
		return nil, common.NewError(common.CodeNotFound, "candidate not found", nil)
	}
	return cloneCandidate(cand), nil
}

func (r *fakeCandidateRepo) List(ctx context.Context, stage candidate.Stage, limit, offset int) ([]candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]candidate.Candidate, 0, len(r.byID))
	for _, cand := range r.byID {
		if stage != "" && cand.CurrentStage != stage {
			continue
		}
		out = append(out, *cloneCandidate(cand))
	}
	return out, nil
}

func (r *fakeCandidateRepo) Transition(ctx context.Context, event candidate.StageEvent) (*candidate.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	cand := r.byID[event.CandidateID]
	if cand == nil {
		return nil, common.NewError(common.CodeNotFound, "candidate not found", nil)
	}
	if cand.CurrentStage != event.FromStage {
		return nil, common.NewError(common.CodeConflict, "candidate stage changed concurrently", nil)
	}
	event.ID = common.NewUUID()
	event.CreatedAt = time.Now().UTC()
	cand.CurrentStage = event.ToStage
	cand.UpdatedAt = event.CreatedAt
	r.events[cand.ID] = append(r.events[cand.ID], event)
	return cloneCandidate(cand), nil
}

func (r *fakeCandidateRepo) ListEvents(ctx context.Context, candidateID common.UUID) ([]candidate.StageEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]candidate.StageEvent(nil), r.events[candidateID]...), nil
}

func (r *fakeCandidateRepo) SetNeedsHRReview(ctx context.Context, id common.UUID, needs bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cand := r.byID[id]
	if cand == nil {
		return common.NewError(common.CodeNotFound, "candidate not found", nil)
	}
	cand.NeedsHRReview = needs
	return nil
}

func cloneCandidate(cand *candidate.Candidate) *candidate.Candidate {
	copy := *cand
	copy.DocsPending = append([]string(nil), cand.DocsPending...)
	return &copy
}

type fakeInterviewRepo struct {
	mu   sync.Mutex
	byID map[common.UUID]*interview.Interview
}

func newFakeInterviewRepo() *fakeInterviewRepo {
	return &fakeInterviewRepo{byID: make(map[common.UUID]*interview.Interview)}
}

func (r *fakeInterviewRepo) GetByID(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv := r.byID[id]
	if iv == nil {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	copy := *iv
	return &copy, nil
}

func (r *fakeInterviewRepo) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interview.Interview, 0)
	for _, iv := range r.byID {
		if iv.CandidateID == candidateID {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (r *fakeInterviewRepo) ListScheduled(ctx context.Context, interviewerID common.UUID, from, to time.Time) ([]interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]interview.Interview, 0)
	for _, iv := range r.byID {
		if iv.InterviewerID != interviewerID || iv.Status != interview.StatusScheduled {
			continue
		}
		if iv.ScheduledEnd.After(from) && iv.ScheduledStart.Before(to) {
			out = append(out, *iv)
		}
	}
	return out, nil
}

func (r *fakeInterviewRepo) Book(ctx context.Context, iv interview.Interview) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Status != interview.StatusScheduled {
			continue
		}
		if existing.InterviewerID == iv.InterviewerID &&
			interview.Overlaps(iv.ScheduledStart, iv.ScheduledEnd, existing.ScheduledStart, existing.ScheduledEnd) {
			return nil, common.NewError(common.CodeConflict, "interviewer already booked for this window", nil)
		}
		if existing.CandidateID == iv.CandidateID && existing.RoundType == iv.RoundType {
			return nil, common.NewError(common.CodeConflict, "candidate already has a scheduled interview for this round", nil)
		}
	}
	iv.ID = common.NewUUID()
	iv.Status = interview.StatusScheduled
	now := time.Now().UTC()
	iv.CreatedAt = now
	iv.UpdatedAt = now
	r.byID[iv.ID] = &iv
	copy := iv
	return &copy, nil
}

func (r *fakeInterviewRepo) Cancel(ctx context.Context, id common.UUID, reason string) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv := r.byID[id]
	if iv == nil {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	switch iv.Status {
	case interview.StatusCancelled:
	case interview.StatusScheduled:
		iv.Status = interview.StatusCancelled
		iv.StatusReason = reason
		iv.UpdatedAt = time.Now().UTC()
	default:
		return nil, common.NewError(common.CodeConflict, "interview is not in scheduled state", nil)
	}
	copy := *iv
	return &copy, nil
}

func (r *fakeInterviewRepo) UpdateStatus(ctx context.Context, id common.UUID, status interview.Status, reason string) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv := r.byID[id]
	if iv == nil {
		return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
	}
	if iv.Status != interview.StatusScheduled && iv.Status != status {
		return nil, common.NewError(common.CodeConflict, "interview is not in scheduled state", nil)
	}
	iv.Status = status
	iv.StatusReason = reason
	iv.UpdatedAt = time.Now().UTC()
	copy := *iv
	return &copy, nil
}

func (r *fakeInterviewRepo) FindScheduledByRound(ctx context.Context, candidateID common.UUID, round interview.RoundType) (*interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, iv := range r.byID {
		if iv.CandidateID == candidateID && iv.RoundType == round && iv.Status == interview.StatusScheduled {
			copy := *iv
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "interview not found", nil)
}

type fakeAssessmentRepo struct {
	mu          sync.Mutex
	byInterview map[common.UUID]*assessment.Assessment
}

func newFakeAssessmentRepo() *fakeAssessmentRepo {
	return &fakeAssessmentRepo{byInterview: make(map[common.UUID]*assessment.Assessment)}
}

func (r *fakeAssessmentRepo) GetByInterview(ctx context.Context, interviewID common.UUID) (*assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byInterview[interviewID]
	if a == nil {
		return nil, common.NewError(common.CodeNotFound, "assessment not found", nil)
	}
	copy := *a
	return &copy, nil
}

func (r *fakeAssessmentRepo) Upsert(ctx context.Context, a assessment.Assessment) (*assessment.Assessment, error) {
	return r.write(a, false)
}

func (r *fakeAssessmentRepo) Submit(ctx context.Context, a assessment.Assessment) (*assessment.Assessment, error) {
	return r.write(a, true)
}

func (r *fakeAssessmentRepo) write(a assessment.Assessment, lock bool) (*assessment.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing := r.byInterview[a.InterviewID]
	if existing != nil {
		if existing.Locked {
			return nil, common.NewError(common.CodeConflict, "assessment is locked", nil)
		}
		existing.Data = a.Data
		existing.UpdatedAt = now
		if lock {
			existing.Status = assessment.StatusSubmitted
			existing.Locked = true
		}
		copy := *existing
		return &copy, nil
	}
	a.ID = common.NewUUID()
	a.Status = assessment.StatusDraft
	if lock {
		a.Status = assessment.StatusSubmitted
		a.Locked = true
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	r.byInterview[a.InterviewID] = &a
	copy := a
	return &copy, nil
}

type fakeOfferRepo struct {
	mu      sync.Mutex
	byID    map[common.UUID]*offer.Offer
	ordered map[common.UUID][]common.UUID
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{
		byID:    make(map[common.UUID]*offer.Offer),
		ordered: make(map[common.UUID][]common.UUID),
	}
}

func (r *fakeOfferRepo) Create(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordered[o.CandidateID] {
		if !offer.IsTerminal(r.byID[id].Status) {
			return nil, common.NewError(common.CodeConflict, "candidate already has an open offer", nil)
		}
	}
	o.ID = common.NewUUID()
	o.Status = offer.StatusDraft
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	r.byID[o.ID] = &o
	r.ordered[o.CandidateID] = append(r.ordered[o.CandidateID], o.ID)
	copy := o
	return &copy, nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, id common.UUID) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := r.byID[id]
	if o == nil {
		return nil, common.NewError(common.CodeNotFound, "offer not found", nil)
	}
	copy := *o
	return &copy, nil
}

// ListByCandidate returns newest first, matching the storage layer's
// created_at DESC ordering.
func (r *fakeOfferRepo) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.ordered[candidateID]
	out := make([]offer.Offer, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *r.byID[ids[i]])
	}
	return out, nil
}

func (r *fakeOfferRepo) FindOpenByCandidate(ctx context.Context, candidateID common.UUID) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordered[candidateID] {
		if !offer.IsTerminal(r.byID[id].Status) {
			copy := *r.byID[id]
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "offer not found", nil)
}

func (r *fakeOfferRepo) Update(ctx context.Context, o offer.Offer) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.byID[o.ID]
	if current == nil {
		return nil, common.NewError(common.CodeNotFound, "offer not found", nil)
	}
	current.TemplateCode = o.TemplateCode
	current.Designation = o.Designation
	current.Currency = o.Currency
	current.AnnualCTC = o.AnnualCTC
	current.FixedPay = o.FixedPay
	current.VariablePay = o.VariablePay
	current.JoiningDate = o.JoiningDate
	current.LetterOverrides = o.LetterOverrides
	current.UpdatedAt = time.Now().UTC()
	copy := *current
	return &copy, nil
}

func (r *fakeOfferRepo) UpdateStatus(ctx context.Context, id common.UUID, from, to offer.Status, note string) (*offer.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.byID[id]
	if current == nil {
		return nil, common.NewError(common.CodeNotFound, "offer not found", nil)
	}
	if current.Status != from {
		return nil, common.NewError(common.CodeConflict, "offer status changed concurrently", nil)
	}
	current.Status = to
	if to == offer.StatusDeclined {
		current.DeclineNote = note
	}
	current.UpdatedAt = time.Now().UTC()
	copy := *current
	return &copy, nil
}

type fakeSprintRepo struct {
	mu      sync.Mutex
	byID    map[common.UUID]*sprint.Assignment
	ordered map[common.UUID][]common.UUID
}

func newFakeSprintRepo() *fakeSprintRepo {
	return &fakeSprintRepo{
		byID:    make(map[common.UUID]*sprint.Assignment),
		ordered: make(map[common.UUID][]common.UUID),
	}
}

func (r *fakeSprintRepo) Create(ctx context.Context, a sprint.Assignment) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordered[a.CandidateID] {
		if !sprint.IsTerminal(r.byID[id].Status) {
			return nil, common.NewError(common.CodeConflict, "candidate already has an active sprint", nil)
		}
	}
	a.ID = common.NewUUID()
	a.Status = sprint.StatusAssigned
	now := time.Now().UTC()
	a.AssignedAt = now
	a.CreatedAt = now
	a.UpdatedAt = now
	r.byID[a.ID] = &a
	r.ordered[a.CandidateID] = append(r.ordered[a.CandidateID], a.ID)
	copy := a
	return &copy, nil
}

func (r *fakeSprintRepo) GetByID(ctx context.Context, id common.UUID) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byID[id]
	if a == nil {
		return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", nil)
	}
	copy := *a
	return &copy, nil
}

func (r *fakeSprintRepo) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.ordered[candidateID]
	out := make([]sprint.Assignment, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *r.byID[ids[i]])
	}
	return out, nil
}

func (r *fakeSprintRepo) FindActiveByCandidate(ctx context.Context, candidateID common.UUID) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.ordered[candidateID] {
		if !sprint.IsTerminal(r.byID[id].Status) {
			copy := *r.byID[id]
			return &copy, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", nil)
}

func (r *fakeSprintRepo) FindLatestByCandidate(ctx context.Context, candidateID common.UUID) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.ordered[candidateID]
	if len(ids) == 0 {
		return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", nil)
	}
	copy := *r.byID[ids[len(ids)-1]]
	return &copy, nil
}

func (r *fakeSprintRepo) UpdateStatus(ctx context.Context, id common.UUID, from, to sprint.Status, score *int, decision sprint.Decision) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byID[id]
	if a == nil {
		return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", nil)
	}
	if a.Status != from {
		return nil, common.NewError(common.CodeConflict, "sprint status changed concurrently", nil)
	}
	a.Status = to
	if score != nil {
		value := *score
		a.Score = &value
	}
	if decision != "" {
		a.Decision = decision
	}
	a.UpdatedAt = time.Now().UTC()
	copy := *a
	return &copy, nil
}

func (r *fakeSprintRepo) AssignReviewer(ctx context.Context, id common.UUID, reviewerID common.UUID) (*sprint.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.byID[id]
	if a == nil {
		return nil, common.NewError(common.CodeNotFound, "sprint assignment not found", nil)
	}
	if sprint.IsTerminal(a.Status) {
		return nil, common.NewError(common.CodeConflict, "sprint assignment is terminal", nil)
	}
	a.ReviewerID = &reviewerID
	a.UpdatedAt = time.Now().UTC()
	copy := *a
	return &copy, nil
}
