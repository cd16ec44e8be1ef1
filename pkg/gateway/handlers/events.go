package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"seamark-hq/meridian/pkg/gateway/httperr"
	"seamark-hq/meridian/pkg/platform"
)

// EventsHandler serves POST /v1/events: host-platform event documents
// fed into the dispatcher. Unknown event kinds are dropped, not failed;
// the host platform adds kinds over time.
type EventsHandler struct {
	deps *Deps
}

// NewEventsHandler creates the event ingestion handler.
func NewEventsHandler(deps *Deps) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventResponse is the ingestion acknowledgment.
type eventResponse struct {
	Status string `json:"status"` // "handled" or "dropped"
	Kind   string `json:"kind,omitempty"`
}

// ServeHTTP implements http.Handler.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httperr.WriteStatus(w, http.StatusBadRequest, "validation_error", "The request is malformed.")
		return
	}

	event, err := platform.ParseEvent(body)
	if err != nil {
		var unknownErr *platform.UnknownKindError
		if errors.As(err, &unknownErr) {
			if h.deps.Metrics != nil {
				h.deps.Metrics.RecordEvent(unknownErr.Kind, "dropped")
			}
			slog.DebugContext(r.Context(), "dropping event of unknown kind", "kind", unknownErr.Kind)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(eventResponse{Status: "dropped", Kind: unknownErr.Kind})
			return
		}
		httperr.WriteStatus(w, http.StatusBadRequest, "validation_error", "The request is malformed.")
		return
	}

	kind := string(event.Kind())

	if err := h.deps.Dispatcher.Dispatch(r.Context(), event); err != nil {
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordEvent(kind, "error")
		}
		slog.ErrorContext(r.Context(), "event handler failed", "kind", kind, "error", err)
		httperr.WriteStatus(w, http.StatusInternalServerError, "internal_error", "An internal error occurred.")
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordEvent(kind, "handled")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(eventResponse{Status: "handled", Kind: kind})
}
