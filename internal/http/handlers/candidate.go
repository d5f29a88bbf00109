package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"talentflow/internal/app"
	"talentflow/internal/common"
	"talentflow/internal/domain/candidate"
	"talentflow/internal/http/middleware"
	"talentflow/internal/http/response"
)

type CandidateHandler struct {
	stages  *app.StageService
	limiter middleware.Limiter
}

func NewCandidateHandler(stages *app.StageService, limiter middleware.Limiter) *CandidateHandler {
	return &CandidateHandler{stages: stages, limiter: limiter}
}

type createCandidateRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	OpeningID string `json:"opening_id"`
}

func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req createCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	cand := candidate.Candidate{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if strings.TrimSpace(req.OpeningID) != "" {
		openingID, err := common.ParseUUID(req.OpeningID)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid opening_id", map[string]string{"opening_id": "invalid uuid"}))
			return
		}
		cand.OpeningID = openingID
	}
	created, err := h.stages.Create(r.Context(), cand, actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	cand, err := h.stages.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cand)
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	stage := candidate.Stage(strings.TrimSpace(r.URL.Query().Get("stage")))
	limit, offset := pagination(r, 50)
	items, err := h.stages.List(r.Context(), stage, limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *CandidateHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	events, err := h.stages.History(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

type transitionRequest struct {
	ToStage  string `json:"to_stage"`
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *CandidateHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.ToStage == "" {
		response.Error(w, common.NewValidationError("to_stage is required", nil))
		return
	}
	if req.Decision == "" {
		response.Error(w, common.NewValidationError("decision is required", nil))
		return
	}
	if h.limiter != nil {
		key := "transition:" + id.String() + ":" + actor.String()
		if !h.limiter.Allow(key, 20, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "transition rate limit exceeded", nil))
			return
		}
	}
	updated, err := h.stages.Transition(r.Context(), app.TransitionRequest{
		CandidateID:  id,
		ToStage:      candidate.Stage(req.ToStage),
		Decision:     candidate.Decision(strings.ToLower(strings.TrimSpace(req.Decision))),
		Note:         req.Note,
		Actor:        actor,
		Capabilities: middleware.CapabilitiesFromContext(r.Context()),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type hrReviewRequest struct {
	NeedsHRReview bool `json:"needs_hr_review"`
}

func (h *CandidateHandler) SetHRReview(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req hrReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.stages.SetNeedsHRReview(r.Context(), id, req.NeedsHRReview)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	if value, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && value > 0 && value <= 200 {
		limit = value
	}
	offset := 0
	if value, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && value >= 0 {
		offset = value
	}
	return limit, offset
}
