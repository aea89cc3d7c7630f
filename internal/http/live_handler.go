package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"easyfood/internal/platform/apperr"
)

// handleLive streams the session over SSE: a "state" event after every
// change, "notification" events for toasts, and a comment heartbeat. The
// controller session is released, and with the last holder its subscriptions
// closed, when the client disconnects.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		errorResponse(w, apperr.Internal("streaming_unsupported", "streaming unsupported", nil))
		return
	}

	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	states, cancel := s.Ctrl.Watch()
	defer cancel()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	flushNotifications := func() {
		for _, n := range s.Notifications.Drain() {
			writeSSE(w, "notification", n)
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-states:
			writeSSE(w, "state", st)
			flushNotifications()
			flusher.Flush()
		case <-heartbeat.C:
			flushNotifications()
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// handleDrainNotifications returns and clears the pending notifications of
// the caller's session, for clients that poll instead of streaming. The read
// is destructive; one consumer per session.
func (h *Handler) handleDrainNotifications(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Acquire(r.Context(), chi.URLParam(r, "id"), userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer s.Release()

	notifications := s.Notifications.Drain()
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
