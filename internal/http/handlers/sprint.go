package handlers

import (
	"net/http"
	"strings"
	"time"

	"talentflow/internal/app"
	"talentflow/internal/common"
	"talentflow/internal/domain/sprint"
	"talentflow/internal/http/response"
)

type SprintHandler struct {
	sprints *app.SprintService
}

func NewSprintHandler(sprints *app.SprintService) *SprintHandler {
	return &SprintHandler{sprints: sprints}
}

type assignSprintRequest struct {
	TemplateID string    `json:"template_id"`
	DueAt      time.Time `json:"due_at"`
}

func (h *SprintHandler) Assign(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req assignSprintRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	templateID, err := common.ParseUUID(strings.TrimSpace(req.TemplateID))
	if err != nil {
		response.Error(w, common.NewValidationError("invalid template_id", map[string]string{"template_id": "invalid uuid"}))
		return
	}
	created, err := h.sprints.Assign(r.Context(), candidateID, templateID, req.DueAt)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

type sprintUpdateRequest struct {
	Status   string `json:"status"`
	Score    *int   `json:"score"`
	Decision string `json:"decision"`
}

func (h *SprintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req sprintUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == "" {
		response.Error(w, common.NewValidationError("status is required", nil))
		return
	}
	updated, err := h.sprints.UpdateStatus(r.Context(), app.SprintUpdateRequest{
		ID:       id,
		Status:   sprint.Status(strings.ToLower(strings.TrimSpace(req.Status))),
		Score:    req.Score,
		Decision: sprint.Decision(strings.ToLower(strings.TrimSpace(req.Decision))),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type assignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id"`
}

func (h *SprintHandler) AssignReviewer(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req assignReviewerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	reviewerID, err := common.ParseUUID(strings.TrimSpace(req.ReviewerID))
	if err != nil {
		response.Error(w, common.NewValidationError("invalid reviewer_id", map[string]string{"reviewer_id": "invalid uuid"}))
		return
	}
	updated, err := h.sprints.AssignReviewer(r.Context(), id, reviewerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *SprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	a, err := h.sprints.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *SprintHandler) ListByCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.sprints.ListByCandidate(r.Context(), candidateID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
