// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// VoteDependencies defines the interface for ballot intake.
type VoteDependencies interface {
	CastVote(ctx context.Context, userID, nomineeID string) (accepted, duplicate bool)
}

// VotesHandler handles ballot submissions.
type VotesHandler struct {
	deps VoteDependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps VoteDependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// voteRequest mirrors the OpenAPI schema for POST /votes.
type voteRequest struct {
	UserID    string `json:"user_id"`
	NomineeID string `json:"nominee_id"`
}

func (v voteRequest) validate() error {
	switch {
	case strings.TrimSpace(v.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(v.NomineeID) == "":
		return errors.New("missing nominee_id")
	}
	return nil
}

// HandlePostVote handles POST /votes requests.
//
// A repeat (user, nominee) pair is acknowledged as a duplicate rather than
// rejected, so retrying clients never see an error for an already counted
// ballot.
func (h *VotesHandler) HandlePostVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_vote"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	accepted, duplicate := h.deps.CastVote(r.Context(), req.UserID, req.NomineeID)
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
