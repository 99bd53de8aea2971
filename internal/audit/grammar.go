package audit

// GrammarVersion identifies the response micro-format understood by the
// parsers in this package. Bump it together with prompts.go whenever a marker,
// the list prefix or the separator changes; it is also the cache namespace so
// responses in an older format are never replayed.
const GrammarVersion = "microformat-v1"

// A response is a sequence of lines. "MARKER: value" opens a field, lines
// starting with ListPrefix are entries of the most recent field, and entries
// with several parts separate them with FieldSeparator. Unknown lines before
// the first marker are ignored; other unmarked lines continue the current
// field's value.
const (
	ListPrefix     = "- "
	FieldSeparator = "|"
)

// Core analysis markers.
const (
	MarkerScore      = "SCORE"
	MarkerFeedback   = "FEEDBACK"
	MarkerPotential  = "POTENTIAL"
	MarkerStrengths  = "STRENGTHS"
	MarkerWeaknesses = "WEAKNESSES"
)

// Recommendation markers.
const (
	MarkerRecommendations = "RECOMMENDATIONS"
	MarkerBefore          = "BEFORE"
	MarkerAfter           = "AFTER"
	MarkerWhy             = "WHY"
)

// Growth tip marker. Each entry is "category | impact | title | description".
const MarkerTips = "TIPS"

// Required list sizes per field.
const (
	StrengthCount       = 3
	WeaknessCount       = 3
	RecommendationCount = 5
	GrowthTipCount      = 4
)
