package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"talentflow/internal/common"
)

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("request body is required", nil)
		}
		return common.NewValidationError("invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

// idFromPath returns the path segment at index as a UUID, counting
// segments from 1: /candidates/{id}/transition has the id at index 2.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index-1 >= len(parts) {
		return "", common.NewValidationError("invalid path", map[string]string{"id": "id segment is missing"})
	}
	parsed, err := common.ParseUUID(parts[index-1])
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return parsed, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}
