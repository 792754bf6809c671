package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	voteengine "daotools/contexts/governance/vote-engine"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "daotools/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	governance voteengine.Module
}

func New(
	governance voteengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/governance/v1/votes", s.handleCreateVote)
	s.mux.HandleFunc("GET /api/governance/v1/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /api/governance/v1/votes/{vote_id}", s.handleGetVote)
	s.mux.HandleFunc("POST /api/governance/v1/votes/{vote_id}/activate", s.handleActivateVote)
	s.mux.HandleFunc("POST /api/governance/v1/votes/{vote_id}/close", s.handleCloseVote)
	s.mux.HandleFunc("POST /api/governance/v1/votes/{vote_id}/ballots", s.handleSubmitBallot)
	s.mux.HandleFunc("POST /api/governance/v1/votes/{vote_id}/reveal", s.handleRevealResults)
	s.mux.HandleFunc("GET /api/governance/v1/votes/{vote_id}/tally", s.handleGetTally)
	s.mux.HandleFunc("GET /api/governance/v1/votes/{vote_id}/state", s.handleGetLifecycleState)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
