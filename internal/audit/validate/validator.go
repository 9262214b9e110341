// Package validate decides whether a raw audit report is usable.
// A report that parsed but scored zero is indistinguishable from a failed
// attempt for retry purposes.
package validate

import (
	"math"

	"github.com/silversurf/auditor/internal/core/domain"
)

// Result is the validator's verdict on one raw report.
type Result struct {
	Valid bool
	// Score is the weighted category score in percent, rounded to 2 decimals.
	Score float64
}

// Validator computes the weighted category score of a raw report.
// Pure; safe for concurrent use.
type Validator struct{}

func New() *Validator { return &Validator{} }

// Validate locates the category for the given variant, computes the weighted
// average of its audit refs, and rejects reports with zero total weight or a
// zero final score. Missing or nil audit scores count as zero but their
// weight still contributes to the denominator.
func (v *Validator) Validate(report *domain.RawReport, variant domain.AuditVariant) Result {
	if report == nil {
		return Result{}
	}

	categoryID, _ := domain.CategoryForVariant(variant)
	cat, ok := report.Categories[categoryID]
	if !ok {
		// Category definition missing or malformed: nothing to weigh.
		return Result{}
	}

	var totalWeighted, totalWeight float64
	for _, ref := range cat.AuditRefs {
		score := 0.0
		if result, ok := report.Audits[ref.ID]; ok && result.Score != nil {
			score = *result.Score
		}
		totalWeighted += score * ref.Weight
		totalWeight += ref.Weight
	}

	if totalWeight == 0 {
		return Result{}
	}

	final := math.Round(totalWeighted/totalWeight*100*100) / 100
	return Result{Valid: final > 0, Score: final}
}
