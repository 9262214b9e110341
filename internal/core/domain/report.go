package domain

// Category IDs used in the Lighthouse-shaped report.
const (
	CategoryFull    = "senior-friendly"
	CategoryReduced = "senior-friendly-lite"
)

// AuditRef binds an audit ID to its scoring weight within a category.
type AuditRef struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// AuditResult is one audit entry in the raw report. Score is in [0,1];
// a nil Score counts as zero when the category score is computed.
type AuditResult struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Score        *float64      `json:"score"`
	NumericValue float64       `json:"numericValue"`
	Details      *AuditDetails `json:"details,omitempty"`
}

// AuditDetails carries the failing-item table attached to an audit.
type AuditDetails struct {
	Type     string           `json:"type"`
	Headings []DetailsHeading `json:"headings"`
	Items    []map[string]any `json:"items"`
}

type DetailsHeading struct {
	Key      string `json:"key"`
	ItemType string `json:"itemType"`
	Text     string `json:"text"`
}

// ReportCategory is one scored category of the raw report.
type ReportCategory struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Score     float64    `json:"score"`
	AuditRefs []AuditRef `json:"auditRefs"`
}

// RawReport is the Lighthouse-compatible report produced by the audit engine.
type RawReport struct {
	LighthouseVersion string                    `json:"lighthouseVersion"`
	FetchTime         int64                     `json:"fetchTime"`
	RequestedURL      string                    `json:"requestedUrl"`
	FinalURL          string                    `json:"finalUrl"`
	Categories        map[string]ReportCategory `json:"categories"`
	Audits            map[string]AuditResult    `json:"audits"`
}

// FullAuditRefs is the scoring table for the full variant.
// Tier 1 critical, tier 2 important, tier 3 foundational.
var FullAuditRefs = []AuditRef{
	{ID: "color-contrast", Weight: 10},
	{ID: "target-size", Weight: 10},
	{ID: "viewport", Weight: 10},
	{ID: "cumulative-layout-shift", Weight: 10},
	{ID: "text-font-audit", Weight: 15},
	{ID: "layout-brittle-audit", Weight: 2},
	{ID: "flesch-kincaid-audit", Weight: 15},
	{ID: "largest-contentful-paint", Weight: 5},
	{ID: "total-blocking-time", Weight: 5},
	{ID: "link-name", Weight: 5},
	{ID: "button-name", Weight: 5},
	{ID: "label", Weight: 5},
	{ID: "interactive-color-audit", Weight: 5},
	{ID: "is-on-https", Weight: 2},
	{ID: "dom-size", Weight: 2},
	{ID: "heading-order", Weight: 2},
	{ID: "errors-in-console", Weight: 2},
	{ID: "geolocation-on-start", Weight: 2},
}

// ReducedAuditRefs is the scoring table for the reduced variant.
var ReducedAuditRefs = []AuditRef{
	{ID: "color-contrast", Weight: 5},
	{ID: "target-size", Weight: 5},
	{ID: "text-font-audit", Weight: 5},
	{ID: "viewport", Weight: 3},
	{ID: "link-name", Weight: 3},
	{ID: "button-name", Weight: 3},
	{ID: "label", Weight: 3},
	{ID: "heading-order", Weight: 2},
	{ID: "is-on-https", Weight: 2},
	{ID: "largest-contentful-paint", Weight: 1},
	{ID: "cumulative-layout-shift", Weight: 1},
}

// CategoryForVariant maps an audit variant to its category ID and refs.
func CategoryForVariant(v AuditVariant) (string, []AuditRef) {
	if v == VariantReduced {
		return CategoryReduced, ReducedAuditRefs
	}
	return CategoryFull, FullAuditRefs
}

// CategoryTitle returns the display title for a category ID.
func CategoryTitle(categoryID string) string {
	if categoryID == CategoryReduced {
		return "Senior Accessibility (Lite)"
	}
	return "Senior Friendliness"
}
