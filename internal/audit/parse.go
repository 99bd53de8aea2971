package audit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/salonaudit/internal/report"
)

// Placeholders keep required fields non-empty when a marker is missing.
const (
	placeholderFeedback       = "Analiza cennika nie zwróciła podsumowania."
	placeholderPotential      = "Średni"
	placeholderStrength       = "Brak wskazanych mocnych stron."
	placeholderWeakness       = "Brak wskazanych słabych stron."
	placeholderRecommendation = "Uzupełnij opisy usług, aby klienci wiedzieli, co otrzymują."
	placeholderTipTitle       = "Uzupełnij opisy usług"
	placeholderTipDescription = "Krótki opis efektu przy każdej usłudze ułatwia decyzję o rezerwacji."
)

const (
	defaultTipCategory = report.CategoryConversion
	defaultTipImpact   = report.ImpactMedium
)

// Core is the result of the first call.
type Core struct {
	Score          int
	Feedback       string
	SalesPotential string
	Strengths      []string
	Weaknesses     []report.Weakness
}

// Recommendations is the result of the second call.
type Recommendations struct {
	Items   []string
	Example report.BeforeAfter
}

var numberRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// ParseCore reads the core analysis response. A missing or unparsable score
// becomes report.DefaultScore and a parsed one is clamped to [0,100].
func ParseCore(text string) Core {
	f := scan(text, MarkerScore, MarkerFeedback, MarkerPotential, MarkerStrengths, MarkerWeaknesses)

	c := Core{
		Score:          parseScore(f[MarkerScore].text()),
		Feedback:       f[MarkerFeedback].text(),
		SalesPotential: parsePotential(f[MarkerPotential].text()),
	}
	if c.Feedback == "" {
		c.Feedback = placeholderFeedback
	}

	c.Strengths = limit(f[MarkerStrengths].list(), StrengthCount)
	if len(c.Strengths) == 0 {
		c.Strengths = []string{placeholderStrength}
	}

	for _, item := range limit(f[MarkerWeaknesses].list(), WeaknessCount) {
		p := parts(item)
		w := report.Weakness{Point: p[0]}
		if len(p) > 1 {
			w.Consequence = strings.Join(p[1:], " ")
		}
		if w.Point != "" {
			c.Weaknesses = append(c.Weaknesses, w)
		}
	}
	if len(c.Weaknesses) == 0 {
		c.Weaknesses = []report.Weakness{{Point: placeholderWeakness}}
	}
	return c
}

func parseScore(s string) int {
	m := numberRe.FindString(s)
	if m == "" {
		return report.DefaultScore
	}
	f, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return report.DefaultScore
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

// parsePotential turns "label | justification" into one sentence-like value.
func parsePotential(s string) string {
	if s == "" {
		return placeholderPotential
	}
	p := parts(s)
	label := p[0]
	rest := strings.TrimSpace(strings.Join(p[1:], " "))
	switch {
	case label == "":
		return rest
	case rest == "":
		return label
	default:
		return label + ": " + rest
	}
}

// ParseRecommendations reads the second response. The before/after example
// is taken as written; AnchorExample ties it to a real service name.
func ParseRecommendations(text string) Recommendations {
	f := scan(text, MarkerRecommendations, MarkerBefore, MarkerAfter, MarkerWhy)

	r := Recommendations{
		Items: limit(f[MarkerRecommendations].list(), RecommendationCount),
		Example: report.BeforeAfter{
			Before:      f[MarkerBefore].text(),
			After:       f[MarkerAfter].text(),
			Explanation: f[MarkerWhy].text(),
		},
	}
	if len(r.Items) == 0 {
		r.Items = []string{placeholderRecommendation}
	}
	return r
}

// AnchorExample makes ex.Before one of names, copied exactly. A case- or
// spacing-insensitive match wins, then a single name contained in (or
// containing) the model's text. When nothing matches, the example cannot be
// tied to a real service and an empty example is returned instead.
// With no names the example is returned unchanged.
func AnchorExample(ex report.BeforeAfter, names []string) report.BeforeAfter {
	if len(names) == 0 {
		return ex
	}
	for _, n := range names {
		if n == ex.Before {
			return ex
		}
	}
	want := normalizeName(ex.Before)
	if want == "" {
		return report.BeforeAfter{}
	}
	for _, n := range names {
		if normalizeName(n) == want {
			ex.Before = n
			return ex
		}
	}
	var partial []string
	for _, n := range names {
		nn := normalizeName(n)
		if nn != "" && (strings.Contains(want, nn) || strings.Contains(nn, want)) {
			partial = append(partial, n)
		}
	}
	if len(partial) == 1 {
		ex.Before = partial[0]
		return ex
	}
	return report.BeforeAfter{}
}

func normalizeName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'„”“`)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ParseGrowthTips reads the third response. Entries with fewer than three
// parts are dropped; unknown categories and impacts get defaults.
func ParseGrowthTips(text string) []report.GrowthTip {
	f := scan(text, MarkerTips)

	var tips []report.GrowthTip
	for _, item := range f[MarkerTips].list() {
		p := parts(item)
		if len(p) < 3 || p[2] == "" {
			continue
		}
		tip := report.GrowthTip{Category: defaultTipCategory, Impact: defaultTipImpact, Title: p[2]}
		if c, ok := report.ParseTipCategory(p[0]); ok {
			tip.Category = c
		}
		if i, ok := report.ParseImpact(p[1]); ok {
			tip.Impact = i
		}
		if len(p) > 3 {
			tip.Description = strings.Join(p[3:], " ")
		}
		tips = append(tips, tip)
		if len(tips) == GrowthTipCount {
			break
		}
	}
	if len(tips) == 0 {
		tips = []report.GrowthTip{{
			Category:    defaultTipCategory,
			Title:       placeholderTipTitle,
			Description: placeholderTipDescription,
			Impact:      defaultTipImpact,
		}}
	}
	return tips
}

func limit(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, it := range items {
		if len(out) == n {
			break
		}
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
