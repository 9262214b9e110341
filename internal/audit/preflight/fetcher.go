// Package preflight obtains an out-of-band static snapshot of the target page
// before the primary engine attempts live navigation. Some sites block the
// primary engine's fingerprint but not the secondary one; a pre-fetched
// snapshot lets later attempts skip live navigation entirely.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/silversurf/auditor/internal/audit/metrics"
	"github.com/silversurf/auditor/internal/core/domain"
	"github.com/silversurf/auditor/internal/infra/browser"
)

// SnapshotWriter persists rendered HTML and returns the file path.
type SnapshotWriter interface {
	CreateSnapshot(html string) (string, error)
}

// Config tunes the preflight pass. The pass is on unless explicitly disabled;
// it is strictly best-effort either way.
type Config struct {
	Disabled          bool          `yaml:"disabled"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleWait        time.Duration `yaml:"settle_wait"`
	MinContentBytes   int           `yaml:"min_content_bytes"`
	MaxRetries        uint64        `yaml:"max_retries"`
	RetryInterval     time.Duration `yaml:"retry_interval"`
}

func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 45 * time.Second,
		SettleWait:        2 * time.Second,
		MinContentBytes:   1000,
		MaxRetries:        1,
		RetryInterval:     2 * time.Second,
	}
}

// SecondarySpec is the launch configuration of the independent secondary
// engine. A Firefox identity keeps its fingerprint distinct from every
// primary-strategy profile.
var SecondarySpec = browser.LaunchSpec{
	Headless:  true,
	UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	Flags: []string{
		"no-sandbox",
		"disable-dev-shm-usage",
		"disable-blink-features=AutomationControlled",
		"disable-extensions",
	},
}

// Fetcher renders the target once with the secondary engine and persists the
// result. Strictly best-effort: every failure is non-fatal to the request.
type Fetcher struct {
	engine    browser.Engine
	snapshots SnapshotWriter
	cfg       Config
	log       *slog.Logger
}

func NewFetcher(engine browser.Engine, snapshots SnapshotWriter, cfg Config) *Fetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.MinContentBytes <= 0 {
		cfg.MinContentBytes = 1000
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 2 * time.Second
	}
	return &Fetcher{
		engine:    engine,
		snapshots: snapshots,
		cfg:       cfg,
		log:       slog.Default().With("component", "preflight"),
	}
}

// Fetch renders url with the secondary engine and returns a snapshot
// reference. Ownership of deleting the snapshot file transfers to the caller.
func (f *Fetcher) Fetch(ctx context.Context, url string, device domain.DeviceClass) (*domain.SnapshotRef, error) {
	var ref *domain.SnapshotRef

	backoff := retry.WithMaxRetries(f.cfg.MaxRetries, retry.NewConstant(f.cfg.RetryInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := f.fetchOnce(ctx, url, device)
		if err != nil {
			return retry.RetryableError(err)
		}
		ref = r
		return nil
	})
	if err != nil {
		metrics.PreflightTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.PreflightTotal.WithLabelValues("success").Inc()
	return ref, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string, device domain.DeviceClass) (*domain.SnapshotRef, error) {
	b, err := f.engine.Launch(ctx, SecondarySpec)
	if err != nil {
		return nil, fmt.Errorf("secondary engine launch: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := b.Close(closeCtx); cerr != nil {
			f.log.Warn("secondary browser close failed, force killing", "error", cerr)
			_ = b.Kill()
		}
	}()

	page, err := b.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("secondary engine page: %w", err)
	}
	if err := page.Emulate(ctx, domain.ProfileForDevice(device)); err != nil {
		return nil, fmt.Errorf("secondary emulation: %w", err)
	}

	nav, err := page.Navigate(ctx, url, f.cfg.NavigationTimeout)
	if err != nil {
		return nil, fmt.Errorf("preflight navigation: %w", err)
	}
	if nav.Status >= 400 {
		return nil, fmt.Errorf("preflight got HTTP %d", nav.Status)
	}

	if f.cfg.SettleWait > 0 {
		t := time.NewTimer(f.cfg.SettleWait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	html, err := page.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("preflight content: %w", err)
	}
	if len(html) < f.cfg.MinContentBytes {
		return nil, fmt.Errorf("preflight content too short (%d bytes)", len(html))
	}

	path, err := f.snapshots.CreateSnapshot(html)
	if err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	finalURL := nav.FinalURL
	if finalURL == "" {
		finalURL = url
	}
	f.log.Info("snapshot captured", "url", finalURL, "path", path, "bytes", len(html))
	return &domain.SnapshotRef{Path: path, FinalURL: finalURL}, nil
}
