package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
)

const (
	// MaxTextLen caps every free-text field, counted in runes.
	MaxTextLen = 5000
	// MaxListLen caps strengths, weaknesses and recommendations.
	MaxListLen = 10
	// MaxGrowthTips caps the growth tip list.
	MaxGrowthTips = 4
)

// SanitizeReportData prepares a report for storage: control characters other
// than newline and tab are removed, line endings become LF, text fields are
// truncated and lists are capped. It does not touch the report's shape.
func SanitizeReportData(r AuditReport) AuditReport {
	out := AuditReport{
		OverallScore:    r.OverallScore,
		GeneralFeedback: cleanText(r.GeneralFeedback),
		SalesPotential:  cleanText(r.SalesPotential),
		BeforeAfterExample: BeforeAfter{
			Before:      cleanText(r.BeforeAfterExample.Before),
			After:       cleanText(r.BeforeAfterExample.After),
			Explanation: cleanText(r.BeforeAfterExample.Explanation),
		},
	}
	for _, s := range capped(r.Strengths, MaxListLen) {
		out.Strengths = append(out.Strengths, cleanText(s))
	}
	for _, w := range capped(r.Weaknesses, MaxListLen) {
		out.Weaknesses = append(out.Weaknesses, Weakness{Point: cleanText(w.Point), Consequence: cleanText(w.Consequence)})
	}
	for _, s := range capped(r.Recommendations, MaxListLen) {
		out.Recommendations = append(out.Recommendations, cleanText(s))
	}
	for _, t := range capped(r.GrowthTips, MaxGrowthTips) {
		out.GrowthTips = append(out.GrowthTips, GrowthTip{
			Category:    TipCategory(cleanText(string(t.Category))),
			Title:       cleanText(t.Title),
			Description: cleanText(t.Description),
			Impact:      Impact(cleanText(string(t.Impact))),
		})
	}
	out.fillEmpty()
	return out
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// cleanText normalizes line endings first so a lone CR survives as LF
// instead of being dropped as a control character.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == utf8.RuneError || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return truncateRunes(s, MaxTextLen)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// pictographs covers Extended_Pictographic code points that may appear
// without a variation selector, plus the joiners, selectors and tag
// characters left behind by partial emoji sequences.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00a9, Hi: 0x00ae, Stride: 5},
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21a9, Hi: 0x21aa, Stride: 1},
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1},
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
		{Lo: 0xfe0e, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
		{Lo: 0x1fc00, Hi: 0x1fffd, Stride: 1},
		{Lo: 0xe0020, Hi: 0xe007f, Stride: 1},
	},
	LatinOffset: 1,
}

// SanitizeAIResponse strips emoji and pictographs from model text meant for
// display and trims surrounding whitespace. Whole emoji sequences go first,
// then any pictograph or selector they leave behind.
func SanitizeAIResponse(s string) string {
	s = gomoji.RemoveEmojis(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(pictographs, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
