package candidate

import (
	"time"

	"talentflow/internal/common"
)

type Stage string

const (
	StageEnquiry     Stage = "enquiry"
	StageHRScreening Stage = "hr_screening"
	StageL2Shortlist Stage = "l2_shortlist"
	StageL2Interview Stage = "l2_interview"
	StageL2Feedback  Stage = "l2_feedback"
	StageSprint      Stage = "sprint"
	StageL1Shortlist Stage = "l1_shortlist"
	StageL1Interview Stage = "l1_interview"
	StageL1Feedback  Stage = "l1_feedback"
	StageOffer       Stage = "offer"
	StageHired       Stage = "hired"
	StageRejected    Stage = "rejected"
)

// PipelineOrder is the forward path a candidate walks with "advance"
// decisions. StageRejected sits outside the order and is reachable
// from every non-terminal stage.
var PipelineOrder = []Stage{
	StageEnquiry,
	StageHRScreening,
	StageL2Shortlist,
	StageL2Interview,
	StageL2Feedback,
	StageSprint,
	StageL1Shortlist,
	StageL1Interview,
	StageL1Feedback,
	StageOffer,
	StageHired,
}

var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(PipelineOrder))
	for i, s := range PipelineOrder {
		m[s] = i
	}
	return m
}()

func IsKnownStage(s Stage) bool {
	if s == StageRejected {
		return true
	}
	_, ok := stageIndex[s]
	return ok
}

func IsTerminal(s Stage) bool {
	return s == StageHired || s == StageRejected
}

// Successor returns the next pipeline stage after s, or "" when s is
// the last stage or outside the pipeline order.
func Successor(s Stage) Stage {
	i, ok := stageIndex[s]
	if !ok || i+1 >= len(PipelineOrder) {
		return ""
	}
	return PipelineOrder[i+1]
}

type Decision string

const (
	DecisionAdvance Decision = "advance"
	DecisionReject  Decision = "reject"
	DecisionSkip    Decision = "skip"
)

type Candidate struct {
	ID            common.UUID `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone,omitempty"`
	OpeningID     common.UUID `json:"opening_id,omitempty"`
	CurrentStage  Stage       `json:"current_stage"`
	NeedsHRReview bool        `json:"needs_hr_review"`
	// DocsPending is owned by the document collaborator; this core
	// reads it only to gate the hr_screening exit.
	DocsPending []string  `json:"docs_pending,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StageEvent is the append-only audit record of a stage transition.
// CurrentStage on the candidate is a projection of the latest event
// and is never trusted over the event log.
type StageEvent struct {
	ID          common.UUID `json:"id"`
	CandidateID common.UUID `json:"candidate_id"`
	FromStage   Stage       `json:"from_stage"`
	ToStage     Stage       `json:"to_stage"`
	Decision    Decision    `json:"decision"`
	Note        string      `json:"note,omitempty"`
	Actor       common.UUID `json:"actor"`
	CreatedAt   time.Time   `json:"created_at"`
}
