package ui

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"

	"clustereval/adapters/results"
	"clustereval/app"
	"clustereval/domain/core"
	"clustereval/internal"
	"clustereval/internal/errors"
	"clustereval/ports"
)

// Server exposes evaluation runs over HTTP: trigger a run, query run history,
// and render a run's markdown report as HTML.
type Server struct {
	router     *chi.Mux
	service    *app.EvaluationService
	repository ports.RunRepository
	resultsDir string
	logger     *internal.Logger
}

// NewServer creates the HTTP server. repository may be nil; the run-history
// endpoints then answer 503.
func NewServer(service *app.EvaluationService, repository ports.RunRepository, resultsDir string, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:     chi.NewRouter(),
		service:    service,
		repository: repository,
		resultsDir: resultsDir,
		logger:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Post("/api/evaluate", s.handleEvaluate)
	s.router.Get("/api/runs", s.handleListRuns)
	s.router.Get("/api/runs/{runID}", s.handleGetRun)
	s.router.Get("/runs/{runID}/report", s.handleRunReport)
}

// Handler returns the mounted router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the given port.
func (s *Server) ListenAndServe(port string) error {
	s.logger.Info("listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

type evaluateRequest struct {
	PhenotypePath string `json:"phenotype_path"`
	ClusterPath   string `json:"cluster_path"`
	Threshold     int    `json:"threshold"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	record, err := s.service.Run(r.Context(), app.RunRequest{
		PhenotypePath: req.PhenotypePath,
		ClusterPath:   req.ClusterPath,
		Threshold:     req.Threshold,
		ResultsDir:    s.resultsDir,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.repository == nil {
		http.Error(w, "run history not configured", http.StatusServiceUnavailable)
		return
	}
	summaries, err := s.repository.ListRuns(r.Context(), 50, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []ports.RunSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchRun(w, r)
	if !ok {
		return
	}
	html := markdown.ToHTML([]byte(results.BuildMarkdown(record)), nil, nil)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (s *Server) fetchRun(w http.ResponseWriter, r *http.Request) (*ports.RunRecord, bool) {
	if s.repository == nil {
		http.Error(w, "run history not configured", http.StatusServiceUnavailable)
		return nil, false
	}
	id, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		http.Error(w, "invalid run ID", http.StatusBadRequest)
		return nil, false
	}
	record, err := s.repository.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return record, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsConfigurationError(err),
		stderrors.Is(err, core.ErrNoCommonSamples),
		stderrors.Is(err, core.ErrEmptyPhenotypes),
		errors.GetCode(err) == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case core.IsNotFoundError(err), errors.GetCode(err) == errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.logger.Error("request failed: %v", err)
	http.Error(w, err.Error(), status)
}
