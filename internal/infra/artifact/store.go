// Package artifact persists report artifacts and temporary page snapshots.
package artifact

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/silversurf/auditor/internal/core/domain"
)

// Store writes report artifacts under the output root and owns the lifecycle
// of temporary snapshot files.
type Store struct {
	outputRoot  string
	snapshotDir string
	log         *slog.Logger
}

func NewStore(outputRoot, snapshotDir string) (*Store, error) {
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	if snapshotDir == "" {
		snapshotDir = os.TempDir()
	}
	if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{
		outputRoot:  outputRoot,
		snapshotDir: snapshotDir,
		log:         slog.Default().With("component", "artifact"),
	}, nil
}

// ReportPath derives the artifact path from the target hostname, variant and
// a millisecond timestamp, e.g. report-example-com-1712345678901-lite.json.
func (s *Store) ReportPath(rawURL string, variant domain.AuditVariant, format domain.OutputFormat) string {
	hostname := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		hostname = strings.ReplaceAll(u.Hostname(), ".", "-")
	}
	suffix := ""
	if variant == domain.VariantReduced {
		suffix = "-lite"
	}
	ext := "json"
	if format == domain.FormatHTML {
		ext = "html"
	}
	name := fmt.Sprintf("report-%s-%d%s.%s", hostname, time.Now().UnixMilli(), suffix, ext)
	return filepath.Join(s.outputRoot, name)
}

// WriteReport persists the raw report in the requested format.
func (s *Store) WriteReport(req domain.AuditRequest, report *domain.RawReport, reportScore float64) (*domain.ArtifactRef, error) {
	path := s.ReportPath(req.URL, req.Variant, req.Format)

	var data []byte
	var err error
	if req.Format == domain.FormatHTML {
		data, err = renderHTML(report, reportScore)
	} else {
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	s.log.Info("report written", "path", path, "score", reportScore)
	return &domain.ArtifactRef{Path: path, Score: reportScore}, nil
}

// CreateSnapshot persists rendered page HTML to a temporary file and returns
// its path. Deleting the file is the caller's responsibility.
func (s *Store) CreateSnapshot(html string) (string, error) {
	f, err := os.CreateTemp(s.snapshotDir, "snapshot-*.html")
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	if _, err := f.WriteString(html); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// DeleteSnapshot removes a snapshot file. Missing files are not an error.
func (s *Store) DeleteSnapshot(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("snapshot cleanup failed", "path", path, "error", err)
	}
}

// PruneOlderThan deletes report artifacts older than the threshold and
// returns how many were removed.
func (s *Store) PruneOlderThan(threshold time.Time) (int, error) {
	entries, err := os.ReadDir(s.outputRoot)
	if err != nil {
		return 0, fmt.Errorf("read output root: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "report-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			if err := os.Remove(filepath.Join(s.outputRoot, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Accessibility Report: {{.FinalURL}}</title></head>
<body>
<h1>Accessibility Report</h1>
<p>URL: {{.FinalURL}}</p>
<p>Score: {{printf "%.2f" .Score}}%</p>
<table border="1" cellpadding="4">
<tr><th>Audit</th><th>Score</th></tr>
{{range .Audits}}<tr><td>{{.Title}}</td><td>{{if .Score}}{{printf "%.2f" (deref .Score)}}{{else}}n/a{{end}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

func renderHTML(report *domain.RawReport, reportScore float64) ([]byte, error) {
	type row struct {
		Title string
		Score *float64
	}
	rows := make([]row, 0, len(report.Audits))
	for _, a := range report.Audits {
		rows = append(rows, row{Title: a.Title, Score: a.Score})
	}
	var b strings.Builder
	err := htmlReport.Execute(&b, map[string]any{
		"FinalURL": report.FinalURL,
		"Score":    reportScore,
		"Audits":   rows,
	})
	if err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
