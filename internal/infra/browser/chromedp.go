package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/silversurf/auditor/internal/core/domain"
)

const snapshotLoadTimeout = 15 * time.Second

// ChromeEngine drives Chromium over the DevTools protocol via chromedp.
type ChromeEngine struct{}

func NewChromeEngine() *ChromeEngine { return &ChromeEngine{} }

// Launch starts an isolated Chromium process. The process lives under ctx:
// cancelling ctx is the hard kill switch for everything spawned here.
func (e *ChromeEngine) Launch(ctx context.Context, spec LaunchSpec) (Browser, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if spec.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(spec.UserAgent))
	}
	if !spec.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	for _, raw := range spec.Flags {
		name, value, found := strings.Cut(strings.TrimPrefix(raw, "--"), "=")
		if found {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the process now so launch failures surface here, not on first use.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chrome launch: %w", err)
	}

	return &chromeBrowser{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromeBrowser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewPage returns the browser's initial tab. One page per process is the
// ownership model here; attempts never share a tab.
func (b *chromeBrowser) NewPage(_ context.Context) (Page, error) {
	return &chromePage{ctx: b.ctx}, nil
}

// Close attempts a graceful browser shutdown bounded by ctx, then releases
// the process either way.
func (b *chromeBrowser) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(b.ctx) }()

	select {
	case err := <-done:
		b.allocCancel()
		return err
	case <-ctx.Done():
		b.allocCancel()
		return ctx.Err()
	}
}

// Kill terminates the Chromium process without waiting for graceful close.
func (b *chromeBrowser) Kill() error {
	b.cancel()
	b.allocCancel()
	return nil
}

type chromePage struct {
	ctx        context.Context
	logicalURL string
}

// run executes chromedp actions on the page's own context, honoring both the
// caller's ctx and an optional per-op timeout.
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx := p.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) (*NavResult, error) {
	runCtx := p.ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(runCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, err
	}
	if resp == nil {
		// Intra-page navigation; treat as a 200 against the requested URL.
		return &NavResult{Status: 200, FinalURL: url}, nil
	}
	return &NavResult{Status: resp.Status, FinalURL: resp.URL}, nil
}

func (p *chromePage) LoadSnapshot(ctx context.Context, path, logicalURL string) error {
	err := p.run(ctx, snapshotLoadTimeout,
		chromedp.Navigate("file://"+path),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return err
	}
	// Same-origin rules forbid rewriting file:// history to the target URL,
	// so the logical URL is tracked on the handle instead.
	p.logicalURL = logicalURL
	return nil
}

func (p *chromePage) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	h := make(network.Headers, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return p.run(ctx, 0,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return network.SetExtraHTTPHeaders(h).Do(ctx)
		}),
	)
}

func (p *chromePage) Emulate(ctx context.Context, profile domain.DeviceProfile) error {
	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(
			profile.Viewport.Width,
			profile.Viewport.Height,
			profile.ScaleFactor,
			profile.Mobile,
		),
		emulation.SetUserAgentOverride(profile.UserAgent).WithPlatform(profile.Platform),
	}
	if profile.Touch {
		actions = append(actions, emulation.SetTouchEmulationEnabled(true).WithMaxTouchPoints(5))
	}
	return p.run(ctx, 0, actions...)
}

func (p *chromePage) AddInitScript(ctx context.Context, script string) error {
	return p.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
}

func (p *chromePage) Evaluate(ctx context.Context, expr string, out any) error {
	return p.run(ctx, 0, chromedp.Evaluate(expr, out))
}

func (p *chromePage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (p *chromePage) MoveMouse(ctx context.Context, x, y float64) error {
	return p.run(ctx, 0, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) URL(ctx context.Context) (string, error) {
	if p.logicalURL != "" {
		return p.logicalURL, nil
	}
	var loc string
	err := p.run(ctx, 0, chromedp.Location(&loc))
	return loc, err
}

func (p *chromePage) Close(ctx context.Context) error {
	return p.run(ctx, 5*time.Second, page.Close())
}
