package handlers

import (
	"net/http"
	"strings"
	"time"

	"talentflow/internal/app"
	"talentflow/internal/common"
	"talentflow/internal/domain/interview"
	"talentflow/internal/http/middleware"
	"talentflow/internal/http/response"
)

type InterviewHandler struct {
	schedules *app.ScheduleService
	limiter   middleware.Limiter
}

func NewInterviewHandler(schedules *app.ScheduleService, limiter middleware.Limiter) *InterviewHandler {
	return &InterviewHandler{schedules: schedules, limiter: limiter}
}

// PreviewSlots serves GET /interview-slots/preview.
func (h *InterviewHandler) PreviewSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	interviewerID, err := common.ParseUUID(strings.TrimSpace(query.Get("interviewer_id")))
	if err != nil {
		response.Error(w, common.NewValidationError("invalid interviewer_id", map[string]string{"interviewer_id": "invalid uuid"}))
		return
	}
	round := interview.RoundType(strings.ToLower(strings.TrimSpace(query.Get("round_type"))))
	startDate, err := time.Parse("2006-01-02", query.Get("start_date"))
	if err != nil {
		response.Error(w, common.NewValidationError("invalid start_date", map[string]string{"start_date": "start_date must be YYYY-MM-DD"}))
		return
	}
	proposals, err := h.schedules.PreviewSlots(r.Context(), interviewerID, round, startDate)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, proposals)
}

type bookRequest struct {
	RoundType      string    `json:"round_type"`
	InterviewerID  string    `json:"interviewer_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	Location       string    `json:"location"`
	MeetingLink    string    `json:"meeting_link"`
}

// Book serves POST /candidates/{id}/interviews.
func (h *InterviewHandler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	interviewerID, err := common.ParseUUID(strings.TrimSpace(req.InterviewerID))
	if err != nil {
		response.Error(w, common.NewValidationError("invalid interviewer_id", map[string]string{"interviewer_id": "invalid uuid"}))
		return
	}
	if h.limiter != nil {
		key := "book:" + candidateID.String() + ":" + actor.String()
		if !h.limiter.Allow(key, 10, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "booking rate limit exceeded", nil))
			return
		}
	}
	booked, err := h.schedules.Book(r.Context(), app.BookingRequest{
		CandidateID:    candidateID,
		RoundType:      interview.RoundType(strings.ToLower(strings.TrimSpace(req.RoundType))),
		InterviewerID:  interviewerID,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Location:       req.Location,
		MeetingLink:    req.MeetingLink,
		Actor:          actor,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, booked)
}

func (h *InterviewHandler) ListByCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.schedules.ListByCandidate(r.Context(), candidateID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	iv, err := h.schedules.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, iv)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *InterviewHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	// Body is optional: cancel without a reason is fine.
	var req cancelRequest
	_ = decodeJSON(r, &req)
	cancelled, err := h.schedules.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cancelled)
}

type rescheduleRequest struct {
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
	Reason         string    `json:"reason"`
}

func (h *InterviewHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
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
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	rescheduled, err := h.schedules.Reschedule(r.Context(), id, req.ScheduledStart, req.ScheduledEnd, req.Reason, actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rescheduled)
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (h *InterviewHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.schedules.SetStatus(r.Context(), id, interview.Status(strings.ToLower(strings.TrimSpace(req.Status))), req.Reason)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
