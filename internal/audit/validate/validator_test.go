package validate

import (
	"testing"

	"github.com/silversurf/auditor/internal/core/domain"
)

func score(v float64) *float64 { return &v }

func report(refs []domain.AuditRef, audits map[string]domain.AuditResult) *domain.RawReport {
	return &domain.RawReport{
		Categories: map[string]domain.ReportCategory{
			domain.CategoryFull: {
				ID:        domain.CategoryFull,
				AuditRefs: refs,
			},
		},
		Audits: audits,
	}
}

func TestValidate_NilReport(t *testing.T) {
	v := New()
	got := v.Validate(nil, domain.VariantFull)
	if got.Valid || got.Score != 0 {
		t.Errorf("Validate(nil) = %+v, want invalid with score 0", got)
	}
}

func TestValidate_MissingCategory(t *testing.T) {
	v := New()
	r := &domain.RawReport{Categories: map[string]domain.ReportCategory{}}
	got := v.Validate(r, domain.VariantFull)
	if got.Valid {
		t.Errorf("missing category should be invalid, got %+v", got)
	}
}

func TestValidate_ZeroTotalWeight(t *testing.T) {
	v := New()
	r := report(nil, nil)
	got := v.Validate(r, domain.VariantFull)
	if got.Valid || got.Score != 0 {
		t.Errorf("zero total weight = %+v, want invalid with score 0", got)
	}
}

func TestValidate_ZeroScore(t *testing.T) {
	// One audit of weight 10 scoring 0 must be rejected, not accepted.
	v := New()
	r := report(
		[]domain.AuditRef{{ID: "target-size", Weight: 10}},
		map[string]domain.AuditResult{
			"target-size": {ID: "target-size", Score: score(0)},
		},
	)
	got := v.Validate(r, domain.VariantFull)
	if got.Valid {
		t.Errorf("zero score should be invalid, got %+v", got)
	}
	if got.Score != 0 {
		t.Errorf("Score = %v, want 0", got.Score)
	}
}

func TestValidate_WeightedAverage(t *testing.T) {
	tests := []struct {
		name   string
		refs   []domain.AuditRef
		audits map[string]domain.AuditResult
		want   float64
	}{
		{
			name: "all perfect",
			refs: []domain.AuditRef{{ID: "a", Weight: 10}, {ID: "b", Weight: 5}},
			audits: map[string]domain.AuditResult{
				"a": {Score: score(1)},
				"b": {Score: score(1)},
			},
			want: 100,
		},
		{
			name: "missing audit still counts weight",
			refs: []domain.AuditRef{{ID: "a", Weight: 10}, {ID: "missing", Weight: 10}},
			audits: map[string]domain.AuditResult{
				"a": {Score: score(1)},
			},
			want: 50,
		},
		{
			name: "nil score counts as zero",
			refs: []domain.AuditRef{{ID: "a", Weight: 10}, {ID: "b", Weight: 10}},
			audits: map[string]domain.AuditResult{
				"a": {Score: score(1)},
				"b": {Score: nil},
			},
			want: 50,
		},
		{
			name: "rounded to two decimals",
			refs: []domain.AuditRef{{ID: "a", Weight: 3}, {ID: "b", Weight: 3}, {ID: "c", Weight: 3}},
			audits: map[string]domain.AuditResult{
				"a": {Score: score(1)},
			},
			want: 33.33,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(report(tt.refs, tt.audits), domain.VariantFull)
			if !got.Valid {
				t.Fatalf("expected valid result, got %+v", got)
			}
			if got.Score != tt.want {
				t.Errorf("Score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestValidate_ReducedVariantUsesLiteCategory(t *testing.T) {
	v := New()
	r := &domain.RawReport{
		Categories: map[string]domain.ReportCategory{
			domain.CategoryReduced: {
				ID:        domain.CategoryReduced,
				AuditRefs: []domain.AuditRef{{ID: "a", Weight: 5}},
			},
		},
		Audits: map[string]domain.AuditResult{"a": {Score: score(0.8)}},
	}

	got := v.Validate(r, domain.VariantReduced)
	if !got.Valid || got.Score != 80 {
		t.Errorf("reduced variant = %+v, want valid score 80", got)
	}

	// The full variant must not find its category in this report.
	if full := v.Validate(r, domain.VariantFull); full.Valid {
		t.Errorf("full variant against lite-only report should be invalid, got %+v", full)
	}
}
