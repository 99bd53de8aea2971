// Package report defines the audit report produced for a price list and the
// three separate passes that make externally sourced reports safe to use:
// structural coercion (Normalize), storage sanitization (SanitizeReportData)
// and display sanitization (SanitizeAIResponse).
package report

import "strings"

// TipCategory is the area a growth tip targets.
type TipCategory string

const (
	CategorySEO        TipCategory = "SEO"
	CategoryConversion TipCategory = "Conversion"
	CategoryRetention  TipCategory = "Retention"
	CategoryImage      TipCategory = "Image"
)

// Impact is the expected effect size of a growth tip.
type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Polish labels appear in model output when the prompt language leaks into
// enum values; they map onto the canonical English values.
var tipCategoryAliases = map[string]TipCategory{
	"seo":        CategorySEO,
	"conversion": CategoryConversion,
	"konwersja":  CategoryConversion,
	"retention":  CategoryRetention,
	"retencja":   CategoryRetention,
	"image":      CategoryImage,
	"wizerunek":  CategoryImage,
}

var impactAliases = map[string]Impact{
	"high":   ImpactHigh,
	"wysoki": ImpactHigh,
	"medium": ImpactMedium,
	"średni": ImpactMedium,
	"sredni": ImpactMedium,
	"low":    ImpactLow,
	"niski":  ImpactLow,
}

// ParseTipCategory maps a label onto a TipCategory.
func ParseTipCategory(s string) (TipCategory, bool) {
	c, ok := tipCategoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// ParseImpact maps a label onto an Impact.
func ParseImpact(s string) (Impact, bool) {
	i, ok := impactAliases[strings.ToLower(strings.TrimSpace(s))]
	return i, ok
}

// Weakness pairs a shortcoming with what it costs the salon.
type Weakness struct {
	Point       string `json:"point"`
	Consequence string `json:"consequence"`
}

// BeforeAfter shows one service name rewritten. Before is a name taken from
// the analyzed price list.
type BeforeAfter struct {
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
}

// GrowthTip is one tagged improvement idea.
type GrowthTip struct {
	Category    TipCategory `json:"category"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      Impact      `json:"impact"`
}

// AuditReport is created fresh per analysis and not mutated after it has
// been persisted. List fields are never nil once normalized.
type AuditReport struct {
	OverallScore       int         `json:"overallScore"`
	GeneralFeedback    string      `json:"generalFeedback"`
	SalesPotential     string      `json:"salesPotential"`
	Strengths          []string    `json:"strengths"`
	Weaknesses         []Weakness  `json:"weaknesses"`
	Recommendations    []string    `json:"recommendations"`
	BeforeAfterExample BeforeAfter `json:"beforeAfterExample"`
	GrowthTips         []GrowthTip `json:"growthTips"`
}

// DefaultScore replaces a missing or unusable overall score.
const DefaultScore = 50

func (r *AuditReport) fillEmpty() {
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []Weakness{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.GrowthTips == nil {
		r.GrowthTips = []GrowthTip{}
	}
}
