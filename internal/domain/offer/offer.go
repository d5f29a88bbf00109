package offer

import (
	"time"

	"talentflow/internal/common"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusSent            Status = "sent"
	StatusAccepted        Status = "accepted"
	StatusDeclined        Status = "declined"
)

func IsKnownStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusSent, StatusAccepted, StatusDeclined:
		return true
	default:
		return false
	}
}

func IsTerminal(s Status) bool {
	return s == StatusAccepted || s == StatusDeclined
}

// AllowedTransition encodes the strictly forward offer lifecycle. A
// rejected approval is terminal declined; editing requires a brand-new
// offer, which keeps the audit trail of what was actually reviewed.
func AllowedTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusPendingApproval || to == StatusDeclined
	case StatusPendingApproval:
		return to == StatusApproved || to == StatusDeclined
	case StatusApproved:
		return to == StatusSent || to == StatusDeclined
	case StatusSent:
		return to == StatusAccepted || to == StatusDeclined
	default:
		return false
	}
}

type Offer struct {
	ID           common.UUID `json:"id"`
	CandidateID  common.UUID `json:"candidate_id"`
	TemplateCode string      `json:"template_code"`
	Designation  string      `json:"designation"`
	Currency     string      `json:"currency"`
	AnnualCTC    int64       `json:"annual_ctc"`
	FixedPay     int64       `json:"fixed_pay,omitempty"`
	VariablePay  int64       `json:"variable_pay,omitempty"`
	JoiningDate  *time.Time  `json:"joining_date,omitempty"`
	Status       Status      `json:"offer_status"`
	DeclineNote  string      `json:"decline_note,omitempty"`
	// LetterOverrides feeds the downstream letter renderer; opaque to
	// this core.
	LetterOverrides map[string]string `json:"letter_overrides,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
