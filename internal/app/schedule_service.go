package app

import (
	"context"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/config"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/domain/interview"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

type ScheduleService struct {
	interviews interview.Repository
	candidates candidate.Repository
	policy     config.SchedulingPolicy
	notifier   notify.Notifier
	logger     *observability.Logger
	now        func() time.Time
}

func NewScheduleService(interviews interview.Repository, candidates candidate.Repository, policy config.SchedulingPolicy, notifier notify.Notifier, logger *observability.Logger) *ScheduleService {
	return &ScheduleService{
		interviews: interviews,
		candidates: candidates,
		policy:     policy,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// PreviewSlots enumerates bookable windows for the interviewer
// starting at firstDay. Proposals are not reservations: the overlap
// condition is re-checked when a booking commits.
func (s *ScheduleService) PreviewSlots(ctx context.Context, interviewerID common.UUID, round interview.RoundType, firstDay time.Time) ([]interview.SlotProposal, error) {
	if !interview.IsKnownRound(round) {
		return nil, common.NewValidationError("invalid round", map[string]string{"round_type": "round_type must be l1, l2, or hr"})
	}
	if interviewerID.IsZero() {
		return nil, common.NewValidationError("invalid interviewer", map[string]string{"interviewer_id": "interviewer_id is required"})
	}

	day := time.Date(firstDay.Year(), firstDay.Month(), firstDay.Day(), 0, 0, 0, 0, time.UTC)
	scanEnd := day.AddDate(0, 0, s.policy.BusinessDays*2+4)
	busy, err := s.interviews.ListScheduled(ctx, interviewerID, day, scanEnd)
	if err != nil {
		return nil, err
	}

	proposals := make([]interview.SlotProposal, 0, s.policy.MaxSlots)
	businessDays := 0
	for businessDays < s.policy.BusinessDays && len(proposals) < s.policy.MaxSlots {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		start := day.Add(s.policy.DayStartUTC)
		for i := 0; i < s.policy.SlotsPerDay && len(proposals) < s.policy.MaxSlots; i++ {
			slotStart := start.Add(time.Duration(i) * s.policy.SlotLength)
			slotEnd := slotStart.Add(s.policy.SlotLength)
			if overlapsAny(slotStart, slotEnd, busy) {
				continue
			}
			proposals = append(proposals, interview.SlotProposal{
				InterviewerID: interviewerID,
				SlotStart:     slotStart,
				SlotEnd:       slotEnd,
				Label:         slotStart.Format("Mon 02 Jan 15:04") + "–" + slotEnd.Format("15:04"),
			})
		}
		businessDays++
		day = day.AddDate(0, 0, 1)
	}
	return proposals, nil
}

func overlapsAny(start, end time.Time, busy []interview.Interview) bool {
	for _, iv := range busy {
		if interview.Overlaps(start, end, iv.ScheduledStart, iv.ScheduledEnd) {
			return true
		}
	}
	return false
}

type BookingRequest struct {
	CandidateID    common.UUID
	RoundType      interview.RoundType
	InterviewerID  common.UUID
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Location       string
	MeetingLink    string
	Actor          common.UUID
}

// roundStages maps a round to the stage in which its interview takes
// place and the shortlist stage from which booking may auto-advance.
func roundStages(round interview.RoundType) (stage candidate.Stage, shortlist candidate.Stage) {
	switch round {
	case interview.RoundL2:
		return candidate.StageL2Interview, candidate.StageL2Shortlist
	case interview.RoundL1:
		return candidate.StageL1Interview, candidate.StageL1Shortlist
	default:
		return candidate.StageHRScreening, ""
	}
}

// Book commits one interview. When the candidate still sits in the
// preceding shortlist stage this is the composite advance-and-book:
// the interview is created first and the stage advanced after, and a
// failed advance cancels the fresh booking so no half-applied unit
// survives.
func (s *ScheduleService) Book(ctx context.Context, req BookingRequest) (*interview.Interview, error) {
	if !interview.IsKnownRound(req.RoundType) {
		return nil, common.NewValidationError("invalid round", map[string]string{"round_type": "round_type must be l1, l2, or hr"})
	}
	if req.InterviewerID.IsZero() {
		return nil, common.NewValidationError("invalid interviewer", map[string]string{"interviewer_id": "interviewer_id is required"})
	}
	if !req.ScheduledEnd.After(req.ScheduledStart) {
		return nil, common.NewValidationError("invalid window", map[string]string{"scheduled_end": "scheduled_end must be after scheduled_start"})
	}

	cand, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}
	stage, shortlist := roundStages(req.RoundType)
	autoAdvance := false
	switch {
	case cand.CurrentStage == stage:
	case shortlist != "" && cand.CurrentStage == shortlist:
		autoAdvance = true
	default:
		return nil, common.NewError(common.CodePrecondition, "candidate stage does not allow scheduling this round", nil)
	}

	booked, err := s.interviews.Book(ctx, interview.Interview{
		CandidateID:    req.CandidateID,
		RoundType:      req.RoundType,
		InterviewerID:  req.InterviewerID,
		ScheduledStart: req.ScheduledStart.UTC(),
		ScheduledEnd:   req.ScheduledEnd.UTC(),
		Location:       req.Location,
		MeetingLink:    req.MeetingLink,
	})
	if err != nil {
		return nil, err
	}

	if autoAdvance {
		_, err := s.candidates.Transition(ctx, candidate.StageEvent{
			CandidateID: cand.ID,
			FromStage:   shortlist,
			ToStage:     stage,
			Decision:    candidate.DecisionAdvance,
			Note:        "auto-advance on interview booking",
			Actor:       req.Actor,
		})
		if err != nil {
			if _, cancelErr := s.interviews.Cancel(ctx, booked.ID, "stage advance failed"); cancelErr != nil {
				s.logger.Error("failed to cancel interview after advance failure",
					"interview", booked.ID.String(), "err", cancelErr.Error())
			}
			return nil, err
		}
	}

	s.notifier.Publish(notify.Change{CandidateID: req.CandidateID, Kind: "interview"})
	s.logger.Info("interview booked",
		"candidate", req.CandidateID.String(),
		"interviewer", req.InterviewerID.String(),
		"round", string(req.RoundType))
	return booked, nil
}

// Cancel is idempotent: cancelling twice returns success with the
// unchanged row.
func (s *ScheduleService) Cancel(ctx context.Context, id common.UUID, reason string) (*interview.Interview, error) {
	cancelled, err := s.interviews.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: cancelled.CandidateID, Kind: "interview"})
	return cancelled, nil
}

// Reschedule is modelled as cancel plus recreate so the original
// window stays on the audit trail.
func (s *ScheduleService) Reschedule(ctx context.Context, id common.UUID, start, end time.Time, reason string, actor common.UUID) (*interview.Interview, error) {
	current, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != interview.StatusScheduled {
		return nil, common.NewError(common.CodeConflict, "only scheduled interviews can be rescheduled", nil)
	}
	if !end.After(start) {
		return nil, common.NewValidationError("invalid window", map[string]string{"scheduled_end": "scheduled_end must be after scheduled_start"})
	}
	if _, err := s.interviews.Cancel(ctx, id, reason); err != nil {
		return nil, err
	}
	booked, err := s.interviews.Book(ctx, interview.Interview{
		CandidateID:    current.CandidateID,
		RoundType:      current.RoundType,
		InterviewerID:  current.InterviewerID,
		ScheduledStart: start.UTC(),
		ScheduledEnd:   end.UTC(),
		Location:       current.Location,
		MeetingLink:    current.MeetingLink,
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: current.CandidateID, Kind: "interview"})
	return booked, nil
}

// SetStatus marks attendance. Attendance for a meeting that has not
// started yet cannot be recorded.
func (s *ScheduleService) SetStatus(ctx context.Context, id common.UUID, status interview.Status, reason string) (*interview.Interview, error) {
	if status != interview.StatusTaken && status != interview.StatusNotTaken {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be taken or not_taken"})
	}
	current, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if current.Status != interview.StatusScheduled {
		return nil, common.NewError(common.CodeConflict, "interview is not in scheduled state", nil)
	}
	if s.now().UTC().Before(current.ScheduledStart) {
		return nil, common.NewError(common.CodePrecondition, "interview has not reached its scheduled start", nil)
	}
	updated, err := s.interviews.UpdateStatus(ctx, id, status, reason)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notify.Change{CandidateID: updated.CandidateID, Kind: "interview"})
	return updated, nil
}

func (s *ScheduleService) Get(ctx context.Context, id common.UUID) (*interview.Interview, error) {
	return s.interviews.GetByID(ctx, id)
}

func (s *ScheduleService) ListByCandidate(ctx context.Context, candidateID common.UUID) ([]interview.Interview, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		return nil, err
	}
	return s.interviews.ListByCandidate(ctx, candidateID)
}
