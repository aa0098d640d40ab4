// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/laurel/internal/adapters/repository"
	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/types"
)

// NominationDependencies defines the interface for nomination intake and
// admin review.
type NominationDependencies interface {
	Nominate(ctx context.Context, userID, categoryID, creatorID, reason string) (model.Nomination, error)
	ApproveNomination(ctx context.Context, nominationID string) (model.Nominee, error)
	Nominations(ctx context.Context) ([]model.Nomination, error)
}

// NominationsHandler handles nomination requests.
type NominationsHandler struct {
	deps NominationDependencies
}

// NewNominationsHandler creates a new nominations handler.
func NewNominationsHandler(deps NominationDependencies) *NominationsHandler {
	return &NominationsHandler{deps: deps}
}

// nominationRequest mirrors the OpenAPI schema for POST /nominations.
type nominationRequest struct {
	UserID     string `json:"user_id"`
	CategoryID string `json:"category_id"`
	CreatorID  string `json:"creator_id"`
	Reason     string `json:"reason"`
}

func (n nominationRequest) validate() error {
	switch {
	case strings.TrimSpace(n.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(n.CategoryID) == "":
		return errors.New("missing category_id")
	case strings.TrimSpace(n.CreatorID) == "":
		return errors.New("missing creator_id")
	}
	return nil
}

// HandleNominations handles POST and GET /nominations requests.
func (h *NominationsHandler) HandleNominations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *NominationsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_nomination"
	var req nominationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	nomination, err := h.deps.Nominate(r.Context(), req.UserID, req.CategoryID, req.CreatorID, req.Reason)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, toNominationEntry(nomination))
}

func (h *NominationsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_nominations"
	nominations, err := h.deps.Nominations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	entries := make([]types.NominationEntry, len(nominations))
	for i, n := range nominations {
		entries[i] = toNominationEntry(n)
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleApprove handles POST /admin/nominations/{id}/approve requests.
func (h *NominationsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	const op = "api.approve_nomination"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/admin/nominations/")
	nominationID, ok := strings.CutSuffix(rest, "/approve")
	if !ok || strings.TrimSpace(nominationID) == "" || strings.Contains(nominationID, "/") {
		http.NotFound(w, r)
		return
	}

	nominee, err := h.deps.ApproveNomination(r.Context(), nominationID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, types.ApprovedNominee{
			ID:         nominee.ID,
			CategoryID: nominee.CategoryID,
			CreatorID:  nominee.CreatorID,
			Approved:   nominee.Approved,
			CreatedAt:  nominee.CreatedAt,
		})
	}
}

func toNominationEntry(n model.Nomination) types.NominationEntry {
	return types.NominationEntry{
		ID:         n.ID,
		UserID:     n.UserID,
		CategoryID: n.CategoryID,
		CreatorID:  n.CreatorID,
		Reason:     n.Reason,
		CreatedAt:  n.CreatedAt,
	}
}
