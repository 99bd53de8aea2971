package audit

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/salonaudit/internal/pricelist"
)

// The prompts below describe the grammar in grammar.go. Change both together
// and bump GrammarVersion.

const rolePreamble = "You are a sales consultant for beauty salons reviewing a salon's public price list. Judge how well it sells: naming, descriptions, structure, price presentation. Reply ONLY in the line format described below. No JSON, no Markdown headings, no extra commentary."

var coreSystemPrompt = rolePreamble + `

Format:
` + MarkerScore + `: <integer 0-100>
` + MarkerFeedback + `: <2-3 sentences of overall feedback>
` + MarkerPotential + `: <short label> ` + FieldSeparator + ` <one sentence of justification>
` + MarkerStrengths + `:
` + ListPrefix + `<strength>
(exactly ` + fmt.Sprint(StrengthCount) + ` strengths)
` + MarkerWeaknesses + `:
` + ListPrefix + `<weakness> ` + FieldSeparator + ` <what it costs the salon with clients>
(exactly ` + fmt.Sprint(WeaknessCount) + ` weaknesses)`

var recommendationsSystemPrompt = rolePreamble + `

Format:
` + MarkerRecommendations + `:
` + ListPrefix + `<one concrete, actionable recommendation>
(exactly ` + fmt.Sprint(RecommendationCount) + ` recommendations)
` + MarkerBefore + `: <a service name copied character for character from the price list>
` + MarkerAfter + `: <the same service renamed or described better>
` + MarkerWhy + `: <one sentence on why the new version sells better>

Never invent the ` + MarkerBefore + ` value. It must be one of the service names given.`

var growthTipsSystemPrompt = rolePreamble + `

Format:
` + MarkerTips + `:
` + ListPrefix + `<category> ` + FieldSeparator + ` <impact> ` + FieldSeparator + ` <short title> ` + FieldSeparator + ` <one or two sentences>
(exactly ` + fmt.Sprint(GrowthTipCount) + ` tips)

category is one of: SEO, Conversion, Retention, Image
impact is one of: High, Medium, Low
Keep these two values in English exactly as listed.`

// buildUserPrompt renders the price list the same way for every call so the
// three answers describe the same input.
func buildUserPrompt(doc pricelist.Document, lang string) string {
	var sb strings.Builder
	if doc.SalonName != "" {
		sb.WriteString("Salon: ")
		sb.WriteString(doc.SalonName)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Categories: %d, services: %d\n", len(doc.Categories), doc.TotalServices)
	for _, c := range doc.Categories {
		sb.WriteString("\nCategory: ")
		sb.WriteString(c.Name)
		sb.WriteString("\n")
		for _, s := range c.Services {
			sb.WriteString(ListPrefix)
			sb.WriteString(s.Name)
			sb.WriteString(" " + FieldSeparator + " ")
			sb.WriteString(s.Price)
			if s.Duration != "" {
				sb.WriteString(" " + FieldSeparator + " ")
				sb.WriteString(s.Duration)
			}
			if s.Description != "" {
				sb.WriteString(" " + FieldSeparator + " ")
				sb.WriteString(s.Description)
			}
			sb.WriteString("\n")
		}
	}
	if lang = strings.TrimSpace(lang); lang != "" {
		fmt.Fprintf(&sb, "\nWrite all free text in language: %s. Keep the markers exactly as shown.\n", lang)
	}
	return sb.String()
}
