package handlers

import (
	"net/http"
	"time"

	"talentflow/internal/app"
	"talentflow/internal/common"
	"talentflow/internal/domain/offer"
	"talentflow/internal/http/middleware"
	"talentflow/internal/http/response"
)

type OfferHandler struct {
	offers *app.OfferService
}

func NewOfferHandler(offers *app.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

type offerRequest struct {
	TemplateCode    string            `json:"template_code"`
	Designation     string            `json:"designation"`
	Currency        string            `json:"currency"`
	AnnualCTC       int64             `json:"annual_ctc"`
	FixedPay        int64             `json:"fixed_pay"`
	VariablePay     int64             `json:"variable_pay"`
	JoiningDate     *time.Time        `json:"joining_date"`
	LetterOverrides map[string]string `json:"letter_overrides"`
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.offers.Create(r.Context(), offer.Offer{
		CandidateID:     candidateID,
		TemplateCode:    req.TemplateCode,
		Designation:     req.Designation,
		Currency:        req.Currency,
		AnnualCTC:       req.AnnualCTC,
		FixedPay:        req.FixedPay,
		VariablePay:     req.VariablePay,
		JoiningDate:     req.JoiningDate,
		LetterOverrides: req.LetterOverrides,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.offers.Update(r.Context(), offer.Offer{
		ID:              id,
		TemplateCode:    req.TemplateCode,
		Designation:     req.Designation,
		Currency:        req.Currency,
		AnnualCTC:       req.AnnualCTC,
		FixedPay:        req.FixedPay,
		VariablePay:     req.VariablePay,
		JoiningDate:     req.JoiningDate,
		LetterOverrides: req.LetterOverrides,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	o, err := h.offers.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, o)
}

func (h *OfferHandler) ListByCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.offers.ListByCandidate(r.Context(), candidateID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

type offerActionRequest struct {
	Reason string `json:"reason"`
}

// Action serves POST /offers/{id}/{submit|approve|reject|send|accept|decline}.
func (h *OfferHandler) Action(w http.ResponseWriter, r *http.Request, action string) {
	id, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req offerActionRequest
	_ = decodeJSON(r, &req)
	capabilities := middleware.CapabilitiesFromContext(r.Context())

	var updated *offer.Offer
	switch action {
	case "submit":
		updated, err = h.offers.SubmitForApproval(r.Context(), id)
	case "approve":
		updated, err = h.offers.Approve(r.Context(), id, capabilities)
	case "reject":
		updated, err = h.offers.Reject(r.Context(), id, req.Reason, capabilities)
	case "send":
		updated, err = h.offers.Send(r.Context(), id)
	case "accept":
		updated, err = h.offers.MarkAccepted(r.Context(), id)
	case "decline":
		updated, err = h.offers.MarkDeclined(r.Context(), id, req.Reason)
	default:
		err = common.NewError(common.CodeNotFound, "unknown offer action", nil)
	}
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
