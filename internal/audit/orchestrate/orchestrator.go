// Package orchestrate walks the strategy catalog, runs bounded attempts, and
// turns the whole escalation into a single terminal outcome.
package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/silversurf/auditor/internal/audit/attempt"
	"github.com/silversurf/auditor/internal/audit/metrics"
	"github.com/silversurf/auditor/internal/audit/strategy"
	"github.com/silversurf/auditor/internal/core/domain"
)

// Executor runs one bounded attempt.
type Executor interface {
	Run(ctx context.Context, req domain.AuditRequest, profile strategy.Profile, snapshot *domain.SnapshotRef, attemptIndex int) (*attempt.Result, error)
}

// Preflighter fetches an out-of-band snapshot before the retry loop.
type Preflighter interface {
	Fetch(ctx context.Context, url string, device domain.DeviceClass) (*domain.SnapshotRef, error)
}

// SnapshotCleaner deletes a snapshot file once the request concludes.
type SnapshotCleaner interface {
	DeleteSnapshot(path string)
}

// Config tunes the retry loop.
type Config struct {
	AttemptsPerStrategy int           `yaml:"attempts_per_strategy"`
	BackoffBase         time.Duration `yaml:"backoff_base"`
	BackoffMax          time.Duration `yaml:"backoff_max"`
}

func DefaultConfig() Config {
	return Config{
		AttemptsPerStrategy: 3,
		BackoffBase:         2 * time.Second,
		BackoffMax:          30 * time.Second,
	}
}

// Orchestrator is the top-level controller for one audit request at a time.
// Attempts are strictly sequential; concurrent attempts against the same
// target would only amplify blocking signals.
type Orchestrator struct {
	catalog   *strategy.Catalog
	executor  Executor
	preflight Preflighter
	snapshots SnapshotCleaner
	backoff   Backoff
	cfg       Config
	log       *slog.Logger
}

// New builds an orchestrator. preflight may be nil to skip the snapshot pass.
func New(catalog *strategy.Catalog, executor Executor, preflight Preflighter, snapshots SnapshotCleaner, cfg Config) *Orchestrator {
	if cfg.AttemptsPerStrategy <= 0 {
		cfg.AttemptsPerStrategy = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	return &Orchestrator{
		catalog:   catalog,
		executor:  executor,
		preflight: preflight,
		snapshots: snapshots,
		backoff:   LinearBackoff{Base: cfg.BackoffBase, Max: cfg.BackoffMax},
		cfg:       cfg,
		log:       slog.Default().With("component", "orchestrate"),
	}
}

// Execute runs the full escalation for one request and returns its terminal
// outcome. The returned error covers only malformed requests; audit failures
// are expressed in the outcome envelope.
func (o *Orchestrator) Execute(ctx context.Context, req domain.AuditRequest) (*domain.AuditOutcome, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit request: %w", err)
	}

	runID := uuid.NewString()
	log := o.log.With("run", runID, "url", req.URL, "device", req.Device, "variant", req.Variant)
	log.Info("starting audit run")

	metrics.RequestsInFlight.Inc()
	defer metrics.RequestsInFlight.Dec()

	// Preflight runs at most once; failure is ignored and the snapshot file,
	// if any, is deleted exactly once when the whole request concludes.
	var snapshot *domain.SnapshotRef
	if o.preflight != nil {
		if snap, err := o.preflight.Fetch(ctx, req.URL, req.Device); err != nil {
			log.Warn("preflight snapshot unavailable, attempts will navigate live", "error", err)
		} else {
			snapshot = snap
			defer o.snapshots.DeleteSnapshot(snapshot.Path)
		}
	}

	var attemptLog []domain.AttemptRecord

	for _, profile := range o.catalog.Profiles() {
		for i := 1; i <= o.cfg.AttemptsPerStrategy; i++ {
			if ctx.Err() != nil {
				return o.cancelled(ctx, attemptLog, log), nil
			}

			start := time.Now()
			attemptCtx, cancel := context.WithTimeout(ctx, profile.OverallTimeout)
			res, err := o.executor.Run(attemptCtx, req, profile, snapshot, i)
			cancel()
			elapsed := time.Since(start)
			metrics.AttemptDuration.WithLabelValues(profile.Name).Observe(elapsed.Seconds())

			if err == nil {
				metrics.AttemptsTotal.WithLabelValues(profile.Name, "success").Inc()
				metrics.RequestsTotal.WithLabelValues("success").Inc()
				attemptLog = append(attemptLog, domain.AttemptRecord{
					Strategy:     profile.Name,
					AttemptIndex: i,
					Success:      true,
					StartedAt:    start,
					FinishedAt:   time.Now(),
				})
				log.Info("audit run succeeded", "strategy", profile.Name, "attempt", i, "score", res.Score, "elapsed", elapsed)
				return &domain.AuditOutcome{
					Success:      true,
					StrategyUsed: profile.Name,
					AttemptIndex: i,
					Message:      fmt.Sprintf("audit completed using %s strategy on attempt %d", profile.Name, i),
					Artifact:     res.Artifact,
					Report:       res.Report,
					AttemptLog:   attemptLog,
				}, nil
			}

			class := domain.Classify(err)
			metrics.AttemptsTotal.WithLabelValues(profile.Name, string(class)).Inc()
			attemptLog = append(attemptLog, domain.AttemptRecord{
				Strategy:     profile.Name,
				AttemptIndex: i,
				ErrorClass:   class,
				Reason:       err.Error(),
				StartedAt:    start,
				FinishedAt:   time.Now(),
			})
			log.Warn("attempt failed", "strategy", profile.Name, "attempt", i, "class", class, "error", err)

			if i < o.cfg.AttemptsPerStrategy {
				if err := sleepCtx(ctx, o.backoff.Delay(i)); err != nil {
					return o.cancelled(ctx, attemptLog, log), nil
				}
			}
		}
	}

	metrics.RequestsTotal.WithLabelValues("exhausted").Inc()
	log.Error("all strategies exhausted", "attempts", len(attemptLog))
	return &domain.AuditOutcome{
		Success:        false,
		ErrorCode:      domain.ErrCodeExhausted,
		AttemptLog:     attemptLog,
		Retryable:      false,
		Recommendation: recommend(attemptLog),
	}, nil
}

func (o *Orchestrator) cancelled(ctx context.Context, attemptLog []domain.AttemptRecord, log *slog.Logger) *domain.AuditOutcome {
	metrics.RequestsTotal.WithLabelValues("cancelled").Inc()
	log.Warn("audit run cancelled", "error", ctx.Err(), "attempts", len(attemptLog))
	return &domain.AuditOutcome{
		Success:        false,
		ErrorCode:      domain.ErrCodeExhausted,
		AttemptLog:     attemptLog,
		Retryable:      false,
		Recommendation: "The audit was cancelled before all strategies could run.",
	}
}

// recommend summarizes the dominant failure class into a human-readable hint.
func recommend(attemptLog []domain.AttemptRecord) string {
	counts := make(map[domain.ErrorClass]int)
	for _, rec := range attemptLog {
		counts[rec.ErrorClass]++
	}
	var dominant domain.ErrorClass
	best := 0
	for class, n := range counts {
		if n > best {
			dominant, best = class, n
		}
	}

	switch dominant {
	case domain.ErrBlocked:
		return "The site actively blocks automated clients. Try auditing from a different network, or supply a manually captured snapshot of the page."
	case domain.ErrNavigationTimeout:
		return "The site did not finish loading within any strategy's budget. Verify the URL is reachable and consider raising the strategy timeouts."
	case domain.ErrServerError:
		return "The site repeatedly returned server errors. Retry once the site itself is healthy again."
	case domain.ErrClientError:
		return "The site rejected every request with a client error. Verify the URL is correct and publicly accessible."
	case domain.ErrInvalidResult:
		return "Every attempt rendered a page that produced a meaningless audit. The site may serve an empty shell to automated clients."
	case domain.ErrLaunchFailure:
		return "The browser process failed to start. Check the host's browser installation and resource limits."
	default:
		return "All strategies failed. Inspect the attempt log for details; re-submitting the same request is unlikely to succeed."
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
