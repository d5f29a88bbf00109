package assessment

import (
	"encoding/json"
	"time"

	"talentflow/internal/common"
)

type Schema string

const (
	SchemaL1 Schema = "l1"
	SchemaL2 Schema = "l2"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Assessment is one-to-one with an Interview. Data is a tagged
// variant: its shape is the form matching Schema and never the other
// one. Locked becomes true on submit and is irreversible.
type Assessment struct {
	ID          common.UUID     `json:"id"`
	InterviewID common.UUID     `json:"interview_id"`
	Schema      Schema          `json:"schema"`
	Data        json.RawMessage `json:"data"`
	Status      Status          `json:"status"`
	Locked      bool            `json:"locked"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// L1Form is the HR/technical first-round sheet.
type L1Form struct {
	Communication    int    `json:"communication"`
	TechnicalDepth   int    `json:"technical_depth"`
	ProblemSolving   int    `json:"problem_solving"`
	RelevantExp      string `json:"relevant_experience,omitempty"`
	NoticePeriodDays int    `json:"notice_period_days,omitempty"`
	Verdict          string `json:"verdict"`
	Notes            string `json:"notes,omitempty"`
}

// L2Form is the manager/GL second-round sheet.
type L2Form struct {
	SystemDesign   int    `json:"system_design"`
	Leadership     int    `json:"leadership"`
	CultureFit     int    `json:"culture_fit"`
	OwnershipScore int    `json:"ownership_score"`
	Verdict        string `json:"verdict"`
	Notes          string `json:"notes,omitempty"`
}

// SchemaForRound maps an interview round to the assessment schema that
// captures it. The hr round shares the L1 sheet.
func SchemaForRound(round string) (Schema, bool) {
	switch round {
	case "l1", "hr":
		return SchemaL1, true
	case "l2":
		return SchemaL2, true
	default:
		return "", false
	}
}
