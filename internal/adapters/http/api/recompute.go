// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/laurel/internal/app"
)

// RecomputeDependencies defines the interface for triggering scoring runs.
type RecomputeDependencies interface {
	Recompute(ctx context.Context) (RunSummary, error)
}

// RecomputeHandler handles admin recompute triggers.
type RecomputeHandler struct {
	deps RecomputeDependencies
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(deps RecomputeDependencies) *RecomputeHandler {
	return &RecomputeHandler{deps: deps}
}

// HandleRecompute handles POST /admin/recompute requests. A second trigger
// while a run is executing gets 409 instead of a queued run.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	summary, err := h.deps.Recompute(r.Context())
	switch {
	case errors.Is(err, app.ErrRecomputeInFlight):
		writeError(w, http.StatusConflict, "recompute_in_flight", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}
