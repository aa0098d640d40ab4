// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// CategoryDependencies defines the interface for category reads.
type CategoryDependencies interface {
	Categories(ctx context.Context) ([]CategoryEntry, error)
	Nominees(ctx context.Context, categoryID string) ([]NomineeEntry, error)
}

// CategoriesHandler handles category listing requests.
type CategoriesHandler struct {
	deps CategoryDependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoryDependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

// HandleGetCategories handles GET /categories requests.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_categories"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	categories, err := h.deps.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if categories == nil {
		categories = []CategoryEntry{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleGetNominees handles GET /categories/{id}/nominees requests.
func (h *CategoriesHandler) HandleGetNominees(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_category_nominees"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/categories/")
	categoryID, ok := strings.CutSuffix(rest, "/nominees")
	if !ok || strings.TrimSpace(categoryID) == "" || strings.Contains(categoryID, "/") {
		http.NotFound(w, r)
		return
	}

	nominees, err := h.deps.Nominees(r.Context(), categoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if nominees == nil {
		nominees = []NomineeEntry{}
	}
	writeJSON(w, http.StatusOK, nominees)
}
