// Package attempt runs exactly one bounded audit attempt: launch, identity
// configuration, content acquisition, settle, audit, validation, persistence,
// and guaranteed teardown of the browser process on every exit path.
package attempt

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/silversurf/auditor/internal/audit/metrics"
	"github.com/silversurf/auditor/internal/audit/strategy"
	"github.com/silversurf/auditor/internal/audit/validate"
	"github.com/silversurf/auditor/internal/core/domain"
	"github.com/silversurf/auditor/internal/infra/assess"
	"github.com/silversurf/auditor/internal/infra/browser"
)

const (
	domReadyTimeout     = 10 * time.Second
	landmarkTimeout     = 8 * time.Second
	consentClickTimeout = 2 * time.Second
	teardownGrace       = 10 * time.Second
)

// AuditEngine is the external audit engine consumed by the executor.
type AuditEngine interface {
	Run(ctx context.Context, page browser.Page, url string, opts assess.Options) (*domain.RawReport, error)
}

// ArtifactWriter persists a validated raw report.
type ArtifactWriter interface {
	WriteReport(req domain.AuditRequest, report *domain.RawReport, score float64) (*domain.ArtifactRef, error)
}

// Config tunes attempt behavior.
type Config struct {
	// MinContentBytes is the rendered-content threshold below which a 403
	// response is treated as blocked. Some sites return 403 headers but
	// still serve a usable body.
	MinContentBytes int `yaml:"min_content_bytes"`
	// BlockedGraceWait is how long to let content load after a 403 before
	// inspecting it.
	BlockedGraceWait time.Duration `yaml:"blocked_grace_wait"`
	// PreNavigationJitter bounds the randomized human-like pause before
	// live navigation.
	PreNavigationJitter time.Duration `yaml:"pre_navigation_jitter"`
	Headless            bool          `yaml:"headless"`
}

// DefaultConfig matches the behavior of the original scanner.
func DefaultConfig() Config {
	return Config{
		MinContentBytes:     1000,
		BlockedGraceWait:    3 * time.Second,
		PreNavigationJitter: 700 * time.Millisecond,
		Headless:            true,
	}
}

// Result is a successful attempt's output.
type Result struct {
	Artifact *domain.ArtifactRef
	Report   *domain.RawReport
	Score    float64
}

// Executor owns one browser-process lifecycle per Run invocation.
type Executor struct {
	engine    browser.Engine
	audit     AuditEngine
	validator *validate.Validator
	artifacts ArtifactWriter
	cfg       Config
	log       *slog.Logger
}

func NewExecutor(engine browser.Engine, audit AuditEngine, artifacts ArtifactWriter, cfg Config) *Executor {
	if cfg.MinContentBytes <= 0 {
		cfg.MinContentBytes = 1000
	}
	if cfg.BlockedGraceWait <= 0 {
		cfg.BlockedGraceWait = 3 * time.Second
	}
	if cfg.PreNavigationJitter <= 0 {
		cfg.PreNavigationJitter = 700 * time.Millisecond
	}
	return &Executor{
		engine:    engine,
		audit:     audit,
		validator: validate.New(),
		artifacts: artifacts,
		cfg:       cfg,
		log:       slog.Default().With("component", "attempt"),
	}
}

// Run executes one bounded attempt under the given profile. Errors never
// escape unclassified; the returned error is always a *domain.ClassifiedError.
// The browser process spawned here is torn down exactly once on every exit
// path, including ctx expiry.
func (e *Executor) Run(ctx context.Context, req domain.AuditRequest, profile strategy.Profile, snapshot *domain.SnapshotRef, attemptIndex int) (*Result, error) {
	log := e.log.With("strategy", profile.Name, "attempt", attemptIndex, "url", req.URL)

	b, err := e.engine.Launch(ctx, browser.LaunchSpec{
		Headless:  e.cfg.Headless,
		UserAgent: profile.UserAgent,
		Flags:     profile.LaunchArguments,
	})
	if err != nil {
		return nil, domain.Classified(domain.ErrLaunchFailure, err)
	}
	metrics.BrowserLaunchesTotal.WithLabelValues("launch").Inc()

	var page browser.Page
	defer func() { e.teardown(page, b, log) }()

	page, err = b.NewPage(ctx)
	if err != nil {
		return nil, domain.Classified(domain.ErrLaunchFailure, err)
	}

	if err := e.configureIdentity(ctx, page, req, profile); err != nil {
		return nil, domain.Classified(domain.ErrLaunchFailure, err)
	}

	logicalURL := req.URL
	if snapshot != nil {
		if snapshot.FinalURL != "" {
			logicalURL = snapshot.FinalURL
		}
		log.Info("loading pre-fetched snapshot", "path", snapshot.Path)
		if err := page.LoadSnapshot(ctx, snapshot.Path, logicalURL); err != nil {
			return nil, domain.Classified(domain.ErrEngineFailure, fmt.Errorf("load snapshot: %w", err))
		}
	} else {
		if cerr := e.navigate(ctx, page, req.URL, profile, log); cerr != nil {
			return nil, cerr
		}
	}

	e.settle(ctx, page, profile, log)

	report, err := e.audit.Run(ctx, page, logicalURL, assess.Options{Variant: req.Variant})
	if err != nil && isNotReadyErr(err) {
		log.Warn("audit engine reported document not ready, retrying permissively", "error", err)
		report, err = e.audit.Run(ctx, page, logicalURL, assess.Options{Variant: req.Variant, Permissive: true})
	}
	if err != nil {
		return nil, domain.Classified(domain.ErrEngineFailure, err)
	}

	verdict := e.validator.Validate(report, req.Variant)
	if !verdict.Valid {
		return nil, domain.Classified(domain.ErrInvalidResult,
			fmt.Errorf("report produced no meaningful score (%.2f)", verdict.Score))
	}

	ref, err := e.artifacts.WriteReport(req, report, verdict.Score)
	if err != nil {
		return nil, domain.Classified(domain.ErrEngineFailure, fmt.Errorf("persist report: %w", err))
	}

	log.Info("attempt succeeded", "score", verdict.Score, "artifact", ref.Path)
	return &Result{Artifact: ref, Report: report, Score: verdict.Score}, nil
}

// configureIdentity applies device emulation, identity headers and, for
// stealth profiles, the fingerprint-masking init scripts. All of it happens
// before any navigation so the site's initial detection sees nothing.
func (e *Executor) configureIdentity(ctx context.Context, page browser.Page, req domain.AuditRequest, profile strategy.Profile) error {
	device := domain.ProfileForDevice(req.Device)

	if err := page.Emulate(ctx, device); err != nil {
		return fmt.Errorf("device emulation: %w", err)
	}
	if len(profile.IdentityHeaders) > 0 {
		if err := page.SetExtraHeaders(ctx, profile.IdentityHeaders); err != nil {
			return fmt.Errorf("identity headers: %w", err)
		}
	}
	if profile.UsesEvasionScripts {
		if err := page.AddInitScript(ctx, browser.StealthScript); err != nil {
			return fmt.Errorf("stealth script: %w", err)
		}
		touchPoints := 0
		if device.Touch {
			touchPoints = 5
		}
		script := browser.DeviceScript(device.UserAgent, device.Platform, device.ScaleFactor, touchPoints, device.Mobile)
		if err := page.AddInitScript(ctx, script); err != nil {
			return fmt.Errorf("device script: %w", err)
		}
	}
	return nil
}

// navigate performs the live navigation and applies the response-code policy.
func (e *Executor) navigate(ctx context.Context, page browser.Page, url string, profile strategy.Profile, log *slog.Logger) *domain.ClassifiedError {
	// Short randomized delay plus a synthetic pointer movement; immediate
	// machine-speed navigation is itself a behavioral fingerprint.
	jitter := e.cfg.PreNavigationJitter
	delay := jitter/3 + time.Duration(rand.Int63n(int64(jitter-jitter/3)+1))
	if err := sleepCtx(ctx, delay); err != nil {
		return domain.Classified(domain.ErrNavigationTimeout, err)
	}
	if err := page.MoveMouse(ctx, 100+rand.Float64()*600, 100+rand.Float64()*400); err != nil {
		log.Debug("pointer movement failed", "error", err)
	}

	nav, err := page.Navigate(ctx, url, profile.NavigationTimeout)
	if err != nil {
		if ctx.Err() != nil || isTimeoutErr(err) {
			return domain.Classified(domain.ErrNavigationTimeout, err)
		}
		return domain.Classified(domain.ErrEngineFailure, fmt.Errorf("navigation: %w", err))
	}

	switch {
	case nav.Status >= 500:
		return domain.Classified(domain.ErrServerError, fmt.Errorf("HTTP %d from %s", nav.Status, url))
	case nav.Status == 403:
		return e.check403(ctx, page, nav, log)
	case nav.Status >= 400:
		return domain.Classified(domain.ErrClientError, fmt.Errorf("HTTP %d from %s", nav.Status, url))
	}
	return nil
}

// check403 applies the 403 grace policy: wait, then inspect rendered content.
// Substantial content despite the status means the page actually loaded.
func (e *Executor) check403(ctx context.Context, page browser.Page, nav *browser.NavResult, log *slog.Logger) *domain.ClassifiedError {
	if err := sleepCtx(ctx, e.cfg.BlockedGraceWait); err != nil {
		return domain.Classified(domain.ErrBlocked, err)
	}
	content, err := page.Content(ctx)
	if err != nil || len(content) < e.cfg.MinContentBytes {
		return domain.Classified(domain.ErrBlocked,
			fmt.Errorf("HTTP 403 with insufficient content (%d bytes)", len(content)))
	}
	log.Info("403 response carried substantial content, continuing", "bytes", len(content), "url", nav.FinalURL)
	return nil
}

// teardown closes the page, then the browser; if graceful close fails or
// exceeds its grace period, the process is force-killed. Runs on a fresh
// context so an expired attempt deadline cannot skip cleanup.
func (e *Executor) teardown(page browser.Page, b browser.Browser, log *slog.Logger) {
	closeCtx, cancel := context.WithTimeout(context.Background(), teardownGrace)
	defer cancel()

	if page != nil {
		if err := page.Close(closeCtx); err != nil {
			log.Debug("page close failed", "error", err)
		}
	}
	if err := b.Close(closeCtx); err != nil {
		log.Warn("graceful browser close failed, force killing", "error", err)
		if kerr := b.Kill(); kerr != nil {
			log.Error("force kill failed", "error", kerr)
		}
	}
	metrics.BrowserLaunchesTotal.WithLabelValues("teardown").Inc()
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
