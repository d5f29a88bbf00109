package app

import (
	"context"
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"talentflow/internal/common"
	"talentflow/internal/domain/assessment"
	"talentflow/internal/domain/interview"
	"talentflow/internal/notify"
	"talentflow/internal/observability"
)

const l1FormSchema = `{
	"type": "object",
	"required": ["communication", "technical_depth", "problem_solving", "verdict"],
	"additionalProperties": false,
	"properties": {
		"communication":       {"type": "integer", "minimum": 1, "maximum": 5},
		"technical_depth":     {"type": "integer", "minimum": 1, "maximum": 5},
		"problem_solving":     {"type": "integer", "minimum": 1, "maximum": 5},
		"relevant_experience": {"type": "string"},
		"notice_period_days":  {"type": "integer", "minimum": 0},
		"verdict":             {"type": "string", "enum": ["advance", "reject", "keep_warm"]},
		"notes":               {"type": "string"}
	}
}`

const l2FormSchema = `{
	"type": "object",
	"required": ["system_design", "leadership", "culture_fit", "verdict"],
	"additionalProperties": false,
	"properties": {
		"system_design":   {"type": "integer", "minimum": 1, "maximum": 5},
		"leadership":      {"type": "integer", "minimum": 1, "maximum": 5},
		"culture_fit":     {"type": "integer", "minimum": 1, "maximum": 5},
		"ownership_score": {"type": "integer", "minimum": 1, "maximum": 5},
		"verdict":         {"type": "string", "enum": ["advance", "reject", "keep_warm"]},
		"notes":           {"type": "string"}
	}
}`

type AssessmentService struct {
	assessments assessment.Repository
	interviews  interview.Repository
	notifier    notify.Notifier
	logger      *observability.Logger
	schemas     map[assessment.Schema]*gojsonschema.Schema
}

func NewAssessmentService(assessments assessment.Repository, interviews interview.Repository, notifier notify.Notifier, logger *observability.Logger) (*AssessmentService, error) {
	schemas := make(map[assessment.Schema]*gojsonschema.Schema, 2)
	for key, raw := range map[assessment.Schema]string{
		assessment.SchemaL1: l1FormSchema,
		assessment.SchemaL2: l2FormSchema,
	} {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, err
		}
		schemas[key] = compiled
	}
	return &AssessmentService{
		assessments: assessments,
		interviews:  interviews,
		notifier:    notifier,
		logger:      logger,
		schemas:     schemas,
	}, nil
}

func (s *AssessmentService) Get(ctx context.Context, interviewID common.UUID, schema assessment.Schema) (*assessment.Assessment, error) {
	if _, err := s.parent(ctx, interviewID, schema); err != nil {
		return nil, err
	}
	return s.assessments.GetByInterview(ctx, interviewID)
}

// Save persists a draft payload. The parent interview must have been
// taken and the row must not be locked.
func (s *AssessmentService) Save(ctx context.Context, interviewID common.UUID, schema assessment.Schema, data json.RawMessage) (*assessment.Assessment, error) {
	if err := s.gate(ctx, interviewID, schema, data); err != nil {
		return nil, err
	}
	saved, err := s.assessments.Upsert(ctx, assessment.Assessment{
		InterviewID: interviewID,
		Schema:      schema,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, interviewID)
	return saved, nil
}

// Submit saves and locks in one step; the lock is irreversible.
func (s *AssessmentService) Submit(ctx context.Context, interviewID common.UUID, schema assessment.Schema, data json.RawMessage) (*assessment.Assessment, error) {
	if err := s.gate(ctx, interviewID, schema, data); err != nil {
		return nil, err
	}
	submitted, err := s.assessments.Submit(ctx, assessment.Assessment{
		InterviewID: interviewID,
		Schema:      schema,
		Data:        data,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, interviewID)
	s.logger.Info("assessment submitted", "interview", interviewID.String(), "schema", string(schema))
	return submitted, nil
}

func (s *AssessmentService) gate(ctx context.Context, interviewID common.UUID, schema assessment.Schema, data json.RawMessage) error {
	parent, err := s.parent(ctx, interviewID, schema)
	if err != nil {
		return err
	}
	switch parent.Status {
	case interview.StatusTaken:
	case interview.StatusNotTaken:
		return common.NewError(common.CodePrecondition, "interview was not taken", nil)
	default:
		return common.NewError(common.CodePrecondition, "interview has not been marked taken", nil)
	}
	if existing, err := s.assessments.GetByInterview(ctx, interviewID); err == nil && existing.Locked {
		return common.NewError(common.CodeConflict, "assessment is locked", nil)
	} else if err != nil && !common.Is(err, common.CodeNotFound) {
		return err
	}
	return s.validatePayload(schema, data)
}

// parent loads the interview and checks the requested schema matches
// the round; an L2 sheet can never be read or written through the L1
// path.
func (s *AssessmentService) parent(ctx context.Context, interviewID common.UUID, schema assessment.Schema) (*interview.Interview, error) {
	parent, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	expected, ok := assessment.SchemaForRound(string(parent.RoundType))
	if !ok || expected != schema {
		return nil, common.NewValidationError("schema mismatch", map[string]string{"schema": "schema does not match the interview round"})
	}
	return parent, nil
}

func (s *AssessmentService) validatePayload(schema assessment.Schema, data json.RawMessage) error {
	compiled, ok := s.schemas[schema]
	if !ok {
		return common.NewValidationError("unknown schema", map[string]string{"schema": "schema must be l1 or l2"})
	}
	if len(data) == 0 {
		return common.NewValidationError("empty payload", map[string]string{"data": "form payload is required"})
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return common.NewValidationError("malformed payload", map[string]string{"data": err.Error()})
	}
	if !result.Valid() {
		fields := make(map[string]string, len(result.Errors()))
		for _, issue := range result.Errors() {
			fields[issue.Field()] = issue.Description()
		}
		return common.NewValidationError("invalid form payload", fields)
	}
	return nil
}

func (s *AssessmentService) publish(ctx context.Context, interviewID common.UUID) {
	parent, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		return
	}
	s.notifier.Publish(notify.Change{CandidateID: parent.CandidateID, Kind: "assessment"})
}
