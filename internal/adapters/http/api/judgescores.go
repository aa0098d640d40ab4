// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/domain/model"
)

// JudgeScoreDependencies defines the interface for judge rubric intake.
type JudgeScoreDependencies interface {
	SubmitJudgeScore(ctx context.Context, score model.JudgeScore) error
}

// JudgeScoresHandler handles judge rubric submissions.
type JudgeScoresHandler struct {
	deps JudgeScoreDependencies
}

// NewJudgeScoresHandler creates a new judge scores handler.
func NewJudgeScoresHandler(deps JudgeScoreDependencies) *JudgeScoresHandler {
	return &JudgeScoresHandler{deps: deps}
}

// judgeScoreRequest mirrors the OpenAPI schema for PUT /judge-scores.
type judgeScoreRequest struct {
	JudgeID     string `json:"judge_id"`
	NomineeID   string `json:"nominee_id"`
	Consistency int    `json:"consistency"`
	Influence   int    `json:"influence"`
	Engagement  int    `json:"engagement"`
	Quality     int    `json:"quality"`
}

func (j judgeScoreRequest) validate() error {
	switch {
	case strings.TrimSpace(j.JudgeID) == "":
		return errors.New("missing judge_id")
	case strings.TrimSpace(j.NomineeID) == "":
		return errors.New("missing nominee_id")
	}
	return nil
}

// HandlePutJudgeScore handles PUT /judge-scores requests. Resubmitting for
// the same (judge, nominee) pair replaces the previous rubric.
func (h *JudgeScoresHandler) HandlePutJudgeScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_judge_score"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req judgeScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	err := h.deps.SubmitJudgeScore(r.Context(), model.JudgeScore{
		JudgeID:     req.JudgeID,
		NomineeID:   req.NomineeID,
		Consistency: req.Consistency,
		Influence:   req.Influence,
		Engagement:  req.Engagement,
		Quality:     req.Quality,
	})
	switch {
	case errors.Is(err, app.ErrInvalidRubric):
		writeError(w, http.StatusBadRequest, "invalid_rubric", WrapKind(op, ErrBadRequest, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, ackResponse{Status: "recorded", Duplicate: false})
	}
}
