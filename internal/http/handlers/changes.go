package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"talentflow/internal/common"
	"talentflow/internal/http/response"
	"talentflow/internal/notify"
)

type ChangesHandler struct {
	hub *notify.Hub
}

func NewChangesHandler(hub *notify.Hub) *ChangesHandler {
	return &ChangesHandler{hub: hub}
}

// Stream serves GET /changes/stream as server-sent events. Each event
// is a bare change marker; clients re-fetch authoritative state on
// receipt and must tolerate missed or duplicate markers.
func (h *ChangesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, common.NewError(common.CodeInternal, "streaming unsupported", nil))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	changes, cancel := h.hub.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case change, open := <-changes:
			if !open {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
