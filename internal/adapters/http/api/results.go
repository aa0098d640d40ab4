// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// ResultDependencies defines the interface for leaderboard reads.
type ResultDependencies interface {
	Results(ctx context.Context) ([]ResultEntry, error)
}

// ResultsHandler handles published leaderboard requests.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandleGetResults handles GET /results requests. The response is always the
// latest fully published run; a recompute in progress never shows through.
func (h *ResultsHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_results"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	results, err := h.deps.Results(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if results == nil {
		results = []ResultEntry{}
	}
	writeJSON(w, http.StatusOK, results)
}
