// Package browser abstracts the automation engine driving a headless browser.
// The chromedp implementation is the production engine; tests substitute fakes.
package browser

import (
	"context"
	"time"

	"github.com/silversurf/auditor/internal/core/domain"
)

// LaunchSpec carries the process-level configuration for one browser launch.
type LaunchSpec struct {
	Headless  bool
	UserAgent string
	// Flags are raw Chromium switches without the leading dashes,
	// e.g. "disable-blink-features=AutomationControlled".
	Flags []string
}

// NavResult is the outcome of a live navigation.
type NavResult struct {
	Status   int64
	FinalURL string
}

// Engine launches isolated browser processes.
type Engine interface {
	Launch(ctx context.Context, spec LaunchSpec) (Browser, error)
}

// Browser is one live automation-engine process. Exclusively owned by a
// single attempt; Close or Kill must be called exactly once per launch.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)

	// Close shuts the process down gracefully, bounded by ctx.
	Close(ctx context.Context) error

	// Kill terminates the underlying process unconditionally.
	Kill() error
}

// Page is one page/context within a browser process.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) (*NavResult, error)

	// LoadSnapshot loads a locally persisted rendering and rebinds the page's
	// logical URL so downstream consumers report against the original target.
	LoadSnapshot(ctx context.Context, path, logicalURL string) error

	SetExtraHeaders(ctx context.Context, headers map[string]string) error
	Emulate(ctx context.Context, profile domain.DeviceProfile) error

	// AddInitScript registers a script evaluated before any page script runs.
	// Must be called before navigation to be effective.
	AddInitScript(ctx context.Context, script string) error

	Evaluate(ctx context.Context, expr string, out any) error
	WaitReady(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	MoveMouse(ctx context.Context, x, y float64) error
	Content(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}
