// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/laurel/internal/domain/model"
	"github.com/okian/laurel/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Write operations.
	CastVote(ctx context.Context, userID, nomineeID string) (accepted, duplicate bool)
	SubmitJudgeScore(ctx context.Context, score model.JudgeScore) error
	Nominate(ctx context.Context, userID, categoryID, creatorID, reason string) (model.Nomination, error)
	ApproveNomination(ctx context.Context, nominationID string) (model.Nominee, error)
	Recompute(ctx context.Context) (RunSummary, error)

	// Read operations expose award data.
	Nominations(ctx context.Context) ([]model.Nomination, error)
	Categories(ctx context.Context) ([]types.CategoryEntry, error)
	Nominees(ctx context.Context, categoryID string) ([]types.NomineeEntry, error)
	Results(ctx context.Context) ([]types.ResultEntry, error)
}

// Read shapes returned by award queries.
type (
	ResultEntry   = types.ResultEntry
	CategoryEntry = types.CategoryEntry
	NomineeEntry  = types.NomineeEntry
	RunSummary    = types.RunSummary
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	votesHandler       *VotesHandler
	judgeScoresHandler *JudgeScoresHandler
	nominationsHandler *NominationsHandler
	categoriesHandler  *CategoriesHandler
	resultsHandler     *ResultsHandler
	recomputeHandler   *RecomputeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		votesHandler:       NewVotesHandler(deps),
		judgeScoresHandler: NewJudgeScoresHandler(deps),
		nominationsHandler: NewNominationsHandler(deps),
		categoriesHandler:  NewCategoriesHandler(deps),
		resultsHandler:     NewResultsHandler(deps),
		recomputeHandler:   NewRecomputeHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/votes", MetricsMiddleware(s.votesHandler.HandlePostVote, "votes"))
	mux.HandleFunc("/judge-scores", MetricsMiddleware(s.judgeScoresHandler.HandlePutJudgeScore, "judge_scores"))
	mux.HandleFunc("/nominations", MetricsMiddleware(s.nominationsHandler.HandleNominations, "nominations"))
	mux.HandleFunc("/categories", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/categories/", MetricsMiddleware(s.categoriesHandler.HandleGetNominees, "category_nominees"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandleGetResults, "results"))
	mux.HandleFunc("/admin/recompute", MetricsMiddleware(s.recomputeHandler.HandleRecompute, "recompute"))
	mux.HandleFunc("/admin/nominations/", MetricsMiddleware(s.nominationsHandler.HandleApprove, "approve_nomination"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
