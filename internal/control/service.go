// Package control wires the audit engine together and exposes the HTTP
// surface: one-shot audits, health checks and metrics.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/silversurf/auditor/internal/audit/attempt"
	"github.com/silversurf/auditor/internal/audit/orchestrate"
	"github.com/silversurf/auditor/internal/audit/preflight"
	"github.com/silversurf/auditor/internal/audit/strategy"
	"github.com/silversurf/auditor/internal/core/domain"
	"github.com/silversurf/auditor/internal/core/worker"
	"github.com/silversurf/auditor/internal/infra/artifact"
	"github.com/silversurf/auditor/internal/infra/assess"
	"github.com/silversurf/auditor/internal/infra/browser"
)

// Config carries everything the service needs to run.
type Config struct {
	Port          int
	OutputRoot    string
	SnapshotDir   string
	Retention     time.Duration
	MaxConcurrent int
	Retry         orchestrate.Config
	Attempt       attempt.Config
	Preflight     preflight.Config
	Strategies    []strategy.Override
}

// Service hosts the orchestrator behind an HTTP server.
type Service struct {
	orchestrator *orchestrate.Orchestrator
	store        *artifact.Store
	pruner       *worker.Pruner
	server       *http.Server
	sem          chan struct{}
	log          *slog.Logger

	cancelWorkers context.CancelFunc
}

// NewService builds the full dependency graph: catalog, engines, executor,
// preflight, orchestrator, artifact store and pruner.
func NewService(cfg Config) (*Service, error) {
	store, err := artifact.NewStore(cfg.OutputRoot, cfg.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}

	catalog, err := strategy.NewCatalog(cfg.Strategies...)
	if err != nil {
		return nil, fmt.Errorf("strategy catalog: %w", err)
	}

	executor := attempt.NewExecutor(browser.NewChromeEngine(), assess.NewEngine(), store, cfg.Attempt)

	var pre orchestrate.Preflighter
	if !cfg.Preflight.Disabled {
		// The secondary engine gets its own instance so its configuration
		// stays independent of the primary one.
		pre = preflight.NewFetcher(browser.NewChromeEngine(), store, cfg.Preflight)
	}

	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}

	s := &Service{
		orchestrator: orchestrate.New(catalog, executor, pre, store, cfg.Retry),
		store:        store,
		pruner:       worker.NewPruner(store, cfg.Retention),
		sem:          make(chan struct{}, cfg.MaxConcurrent),
		log:          slog.Default().With("component", "control"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/audit", s.handleAudit)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	return s, nil
}

// Audit runs one orchestration directly, bypassing HTTP. Used by the CLI.
func (s *Service) Audit(ctx context.Context, req domain.AuditRequest) (*domain.AuditOutcome, error) {
	return s.orchestrator.Execute(ctx, req)
}

// Start launches the HTTP server and background workers.
func (s *Service) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancelWorkers = cancel
	go s.pruner.Start(workerCtx)

	go func() {
		s.log.Info("HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully and stops workers.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancelWorkers != nil {
		s.cancelWorkers()
	}
	return s.server.Shutdown(ctx)
}

func (s *Service) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-r.Context().Done():
		http.Error(w, "request cancelled while queued", http.StatusServiceUnavailable)
		return
	}

	outcome, err := s.orchestrator.Execute(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		s.log.Error("failed to encode outcome", "error", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	// HEAD support for load-balancer probes.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "auditor"})
}
