package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/silversurf/auditor/internal/core/domain"
	"github.com/silversurf/auditor/internal/infra/browser"
)

// fakePage serves canned probe results keyed by probe expression.
type fakePage struct {
	content  string
	finalURL string
	urlErr   error
	evals    map[string]any
	evalErrs map[string]error
}

func (f *fakePage) Evaluate(ctx context.Context, expr string, out any) error {
	if err, ok := f.evalErrs[expr]; ok {
		return err
	}
	v, ok := f.evals[expr]
	if !ok {
		return fmt.Errorf("unexpected probe: %.40s", expr)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakePage) Content(ctx context.Context) (string, error) { return f.content, nil }

func (f *fakePage) URL(ctx context.Context) (string, error) { return f.finalURL, f.urlErr }

func (f *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) (*browser.NavResult, error) {
	return nil, errors.New("not navigable")
}

func (f *fakePage) LoadSnapshot(ctx context.Context, path, logicalURL string) error { return nil }

func (f *fakePage) SetExtraHeaders(ctx context.Context, headers map[string]string) error { return nil }

func (f *fakePage) Emulate(ctx context.Context, profile domain.DeviceProfile) error { return nil }

func (f *fakePage) AddInitScript(ctx context.Context, script string) error { return nil }

func (f *fakePage) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (f *fakePage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (f *fakePage) MoveMouse(ctx context.Context, x, y float64) error { return nil }

func (f *fakePage) Close(ctx context.Context) error { return nil }

func healthyPage() *fakePage {
	return &fakePage{
		content: `<html><head><meta name="viewport" content="width=device-width"></head>` +
			`<body><main><h1>Title</h1><p>Readable text</p></main></body></html>`,
		finalURL: "https://example.com/",
		evals: map[string]any{
			readyStateJS:   "complete",
			targetSizeJS:   map[string]any{"total": 10, "small": 2},
			linkNameJS:     map[string]any{"total": 8, "failing": 0},
			buttonNameJS:   map[string]any{"total": 4, "failing": 1},
			labelJS:        map[string]any{"total": 0, "failing": 0},
			headingOrderJS: true,
			textFontJS:     map[string]any{"total": 20, "small": 5},
			performanceJS:  map[string]any{"loadTime": 1800, "lcp": 1200},
			domSizeJS:      200,
		},
	}
}

func auditScore(t *testing.T, report *domain.RawReport, id string) float64 {
	t.Helper()
	result, ok := report.Audits[id]
	if !ok {
		t.Fatalf("audit %q missing from report", id)
	}
	if result.Score == nil {
		t.Fatalf("audit %q has nil score", id)
	}
	return *result.Score
}

func TestRun_FullVariant(t *testing.T) {
	e := NewEngine()
	report, err := e.Run(context.Background(), healthyPage(), "https://example.com", Options{Variant: domain.VariantFull})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cat, ok := report.Categories[domain.CategoryFull]
	if !ok {
		t.Fatalf("categories = %v, want %q", report.Categories, domain.CategoryFull)
	}
	if len(cat.AuditRefs) != len(domain.FullAuditRefs) {
		t.Errorf("category has %d refs, want %d", len(cat.AuditRefs), len(domain.FullAuditRefs))
	}
	if cat.Score <= 0 || cat.Score > 1 {
		t.Errorf("category score = %v, want within (0,1]", cat.Score)
	}
	if report.RequestedURL != "https://example.com" || report.FinalURL != "https://example.com/" {
		t.Errorf("URLs = %q / %q", report.RequestedURL, report.FinalURL)
	}

	checks := map[string]float64{
		"target-size":          0.8,
		"viewport":             1,
		"link-name":            1,
		"button-name":          0.75,
		"label":                1,
		"heading-order":        1,
		"is-on-https":          1,
		"text-font-audit":      0.75,
		"color-contrast":       0.9,
		"dom-size":             1,
		"geolocation-on-start": 1,
		"flesch-kincaid-audit": 0,
		"layout-brittle-audit": 0,
	}
	for id, want := range checks {
		if got := auditScore(t, report, id); got != want {
			t.Errorf("audit %q score = %v, want %v", id, got, want)
		}
	}
}

func TestRun_ReducedVariant(t *testing.T) {
	e := NewEngine()
	report, err := e.Run(context.Background(), healthyPage(), "https://example.com", Options{Variant: domain.VariantReduced})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cat, ok := report.Categories[domain.CategoryReduced]
	if !ok {
		t.Fatalf("categories = %v, want %q", report.Categories, domain.CategoryReduced)
	}
	if len(cat.AuditRefs) != len(domain.ReducedAuditRefs) {
		t.Errorf("category has %d refs, want %d", len(cat.AuditRefs), len(domain.ReducedAuditRefs))
	}
	// Full-only audits stay out of the reduced report.
	for _, id := range []string{"dom-size", "flesch-kincaid-audit", "geolocation-on-start"} {
		if _, ok := report.Audits[id]; ok {
			t.Errorf("audit %q present in reduced report", id)
		}
	}
}

func TestRun_DocumentNotReady(t *testing.T) {
	e := NewEngine()
	page := healthyPage()
	page.evals[readyStateJS] = "loading"

	_, err := e.Run(context.Background(), page, "https://example.com", Options{Variant: domain.VariantFull})
	if err == nil || !strings.Contains(err.Error(), "document not ready") {
		t.Fatalf("err = %v, want a document-not-ready failure", err)
	}

	report, err := e.Run(context.Background(), page, "https://example.com", Options{Variant: domain.VariantFull, Permissive: true})
	if err != nil {
		t.Fatalf("permissive Run: %v", err)
	}
	if report == nil {
		t.Fatal("permissive Run returned no report")
	}
}

func TestRun_ProbeFailuresDegrade(t *testing.T) {
	e := NewEngine()
	page := healthyPage()
	page.evalErrs = map[string]error{
		targetSizeJS:  errors.New("execution context destroyed"),
		domSizeJS:     errors.New("execution context destroyed"),
		performanceJS: errors.New("execution context destroyed"),
	}

	report, err := e.Run(context.Background(), page, "https://example.com", Options{Variant: domain.VariantFull})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// A failed probe drops its audit rather than failing the run.
	if _, ok := report.Audits["target-size"]; ok {
		t.Error("target-size present despite probe failure")
	}
	// dom-size falls back to the static parse of the rendered HTML.
	domSize := report.Audits["dom-size"]
	if domSize.NumericValue <= 0 {
		t.Errorf("dom-size fallback = %v, want a positive static element count", domSize.NumericValue)
	}
	// A dead performance probe scores LCP as if instant, not as an error.
	if got := auditScore(t, report, "largest-contentful-paint"); got != 1 {
		t.Errorf("LCP score = %v, want 1 when the probe is unavailable", got)
	}
}

func TestRun_LCPDegradesWithSlowness(t *testing.T) {
	tests := []struct {
		lcp  float64
		want float64
	}{
		{1200, 1},
		{3750, 0.5},
		{6000, 0},
	}
	e := NewEngine()
	for _, tt := range tests {
		page := healthyPage()
		page.evals[performanceJS] = map[string]any{"loadTime": 2000, "lcp": tt.lcp}
		report, err := e.Run(context.Background(), page, "https://example.com", Options{Variant: domain.VariantFull})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got := auditScore(t, report, "largest-contentful-paint"); got != tt.want {
			t.Errorf("LCP %v: score = %v, want %v", tt.lcp, got, tt.want)
		}
	}
}

func TestRun_InsecureScheme(t *testing.T) {
	e := NewEngine()
	page := healthyPage()
	page.finalURL = "http://example.com/"

	report, err := e.Run(context.Background(), page, "http://example.com", Options{Variant: domain.VariantFull})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := auditScore(t, report, "is-on-https"); got != 0 {
		t.Errorf("is-on-https score = %v, want 0", got)
	}
}

func TestRun_FinalURLFallsBackToRequested(t *testing.T) {
	e := NewEngine()
	page := healthyPage()
	page.finalURL = ""
	page.urlErr = errors.New("target detached")

	report, err := e.Run(context.Background(), page, "https://example.com/original", Options{Variant: domain.VariantFull})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FinalURL != "https://example.com/original" {
		t.Errorf("FinalURL = %q, want the requested URL", report.FinalURL)
	}
}

func TestRatioScore(t *testing.T) {
	tests := []struct {
		failing, total int
		want           float64
	}{
		{0, 0, 1},
		{0, 10, 1},
		{5, 10, 0.5},
		{10, 10, 0},
		{15, 10, 0},
	}
	for _, tt := range tests {
		if got := ratioScore(tt.failing, tt.total); got != tt.want {
			t.Errorf("ratioScore(%d, %d) = %v, want %v", tt.failing, tt.total, got, tt.want)
		}
	}
}
