package interview

import (
	"time"

	"talentflow/internal/common"
)

type RoundType string

const (
	RoundL1 RoundType = "l1"
	RoundL2 RoundType = "l2"
	RoundHR RoundType = "hr"
)

func IsKnownRound(r RoundType) bool {
	switch r {
	case RoundL1, RoundL2, RoundHR:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusTaken     Status = "taken"
	StatusNotTaken  Status = "not_taken"
	StatusCancelled Status = "cancelled"
)

type Interview struct {
	ID             common.UUID `json:"id"`
	CandidateID    common.UUID `json:"candidate_id"`
	RoundType      RoundType   `json:"round_type"`
	InterviewerID  common.UUID `json:"interviewer_id"`
	ScheduledStart time.Time   `json:"scheduled_start"`
	ScheduledEnd   time.Time   `json:"scheduled_end"`
	Location       string      `json:"location,omitempty"`
	MeetingLink    string      `json:"meeting_link,omitempty"`
	Status         Status      `json:"status"`
	StatusReason   string      `json:"status_reason,omitempty"`
	Decision       string      `json:"decision,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// SlotProposal is ephemeral: generated on demand, never persisted, and
// not a reservation. Booking re-validates the window at commit time.
type SlotProposal struct {
	InterviewerID common.UUID `json:"interviewer_id"`
	SlotStart     time.Time   `json:"slot_start"`
	SlotEnd       time.Time   `json:"slot_end"`
	Label         string      `json:"label"`
}

// Overlaps applies the half-open interval test used everywhere the
// calendar is consulted: [start, end) windows collide when
// new.start < existing.end and new.end > existing.start.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
