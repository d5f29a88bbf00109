package sprint

import (
	"time"

	"talentflow/internal/common"
)

type Status string

const (
	StatusAssigned    Status = "assigned"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

func IsKnownStatus(s Status) bool {
	switch s {
	case StatusAssigned, StatusSubmitted, StatusUnderReview, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

func AllowedTransition(from, to Status) bool {
	switch from {
	case StatusAssigned:
		return to == StatusSubmitted || to == StatusCancelled
	case StatusSubmitted:
		return to == StatusUnderReview || to == StatusCancelled
	case StatusUnderReview:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

type Decision string

const (
	DecisionAdvance  Decision = "advance"
	DecisionReject   Decision = "reject"
	DecisionKeepWarm Decision = "keep_warm"
)

func IsKnownDecision(d Decision) bool {
	switch d {
	case DecisionAdvance, DecisionReject, DecisionKeepWarm:
		return true
	default:
		return false
	}
}

type Assignment struct {
	ID          common.UUID  `json:"id"`
	CandidateID common.UUID  `json:"candidate_id"`
	TemplateID  common.UUID  `json:"template_id"`
	AssignedAt  time.Time    `json:"assigned_at"`
	DueAt       time.Time    `json:"due_at"`
	Status      Status       `json:"status"`
	ReviewerID  *common.UUID `json:"reviewer_id,omitempty"`
	Score       *int         `json:"score,omitempty"`
	Decision    Decision     `json:"decision,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SatisfiesStageExit reports whether this assignment lets the
// candidate leave the sprint stage.
func (a *Assignment) SatisfiesStageExit() bool {
	return a != nil && a.Status == StatusCompleted && a.Decision == DecisionAdvance
}
