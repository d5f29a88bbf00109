package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"talentflow/internal/app"
	"talentflow/internal/common"
	"talentflow/internal/domain/assessment"
	"talentflow/internal/http/response"
)

type AssessmentHandler struct {
	assessments *app.AssessmentService
}

func NewAssessmentHandler(assessments *app.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// schemaFromPath picks the schema out of paths like
// /interviews/{id}/l1-assessment or /interviews/{id}/l2-assessment/submit.
func schemaFromPath(path string) (assessment.Schema, error) {
	switch {
	case strings.Contains(path, "/l1-assessment"):
		return assessment.SchemaL1, nil
	case strings.Contains(path, "/l2-assessment"):
		return assessment.SchemaL2, nil
	default:
		return "", common.NewValidationError("unknown assessment schema", nil)
	}
}

func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	interviewID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	schema, err := schemaFromPath(r.URL.Path)
	if err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.assessments.Get(r.Context(), interviewID, schema)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *AssessmentHandler) Save(w http.ResponseWriter, r *http.Request) {
	interviewID, schema, payload, err := h.decode(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	saved, err := h.assessments.Save(r.Context(), interviewID, schema, payload)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, saved)
}

func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	interviewID, schema, payload, err := h.decode(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	submitted, err := h.assessments.Submit(r.Context(), interviewID, schema, payload)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, submitted)
}

func (h *AssessmentHandler) decode(r *http.Request) (common.UUID, assessment.Schema, json.RawMessage, error) {
	interviewID, err := idFromPath(r, 2)
	if err != nil {
		return "", "", nil, err
	}
	schema, err := schemaFromPath(r.URL.Path)
	if err != nil {
		return "", "", nil, err
	}
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return "", "", nil, common.NewValidationError("invalid form payload", map[string]string{"data": err.Error()})
	}
	return interviewID, schema, payload, nil
}
