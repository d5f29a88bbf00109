package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"talentflow/internal/common"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error *common.Error `json:"error"`
}

// Error maps the error-code taxonomy onto HTTP statuses. Precondition
// failures surface as 409 like stale-state conflicts: both tell the
// caller to re-fetch and retry against fresh state; the body code
// keeps them distinguishable.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		appErr = common.NewError(common.CodeInternal, "internal error", err)
	}
	status := http.StatusInternalServerError
	switch appErr.Code {
	case common.CodeValidation:
		status = http.StatusBadRequest
	case common.CodeUnauthorized:
		status = http.StatusUnauthorized
	case common.CodeForbidden:
		status = http.StatusForbidden
	case common.CodeNotFound:
		status = http.StatusNotFound
	case common.CodeConflict, common.CodePrecondition:
		status = http.StatusConflict
	case common.CodeRateLimited:
		status = http.StatusTooManyRequests
	}
	if status == http.StatusInternalServerError {
		appErr = &common.Error{Code: common.CodeInternal, Message: "internal error"}
	}
	JSON(w, status, errorBody{Error: appErr})
}
