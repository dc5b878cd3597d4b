package watch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gcodepost/internal/eventstore"
	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/metrics"
)

// Server is the status server of the daemon.
type Server struct {
	Addr       string
	router     *chi.Mux
	server     *http.Server
	watcher    *Watcher
	projection *eventstore.JobHistoryProjection
	logger     *slog.Logger
}

// NewServer creates the status server. reg and projection may be nil, which
// disables /metrics and /jobs respectively.
func NewServer(addr string, w *Watcher, reg *prom.Registry, projection *eventstore.JobHistoryProjection, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Addr:       addr,
		router:     chi.NewRouter(),
		watcher:    w,
		projection: projection,
		logger:     logger,
	}

	s.setupRoutes(reg)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(reg *prom.Registry) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/healthz", s.handleHealth)
	if reg != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(reg))
	}
	if s.projection != nil {
		s.router.Get("/jobs", s.handleListJobs)
		s.router.Get("/jobs/{id}", s.handleGetJob)
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening", logfields.Addr(s.Addr))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Processed int64  `json:"processed"`
	Failed    int64  `json:"failed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if s.watcher != nil {
		resp.Processed, resp.Failed = s.watcher.Counts()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if err := s.projection.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	history := s.projection.GetHistory()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(history) {
			history = history[:limit]
		}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if err := s.projection.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	job, ok := s.projection.GetJob(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
