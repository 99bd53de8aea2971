package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrNotObject is returned when a raw report is not a JSON object.
var ErrNotObject = errors.New("report: payload is not a JSON object")

// ParseAuditReport decodes raw and coerces it with Normalize. It fails only
// when raw is not a JSON object; malformed fields get defaults instead.
func ParseAuditReport(raw []byte) (AuditReport, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return AuditReport{}, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if m == nil {
		return AuditReport{}, ErrNotObject
	}
	return Normalize(m), nil
}

// Normalize forces m into the AuditReport shape. The score must be a number
// in [0,100] or it becomes DefaultScore; missing lists become empty; growth
// tips with an unknown category or impact, or a non-string title or
// description, are dropped. Normalizing the JSON form of a normalized report
// yields the same report.
func Normalize(m map[string]any) AuditReport {
	r := AuditReport{
		OverallScore:    coerceScore(m["overallScore"]),
		GeneralFeedback: asString(m["generalFeedback"]),
		SalesPotential:  asString(m["salesPotential"]),
		Strengths:       stringList(m["strengths"]),
		Recommendations: stringList(m["recommendations"]),
	}

	if items, ok := m["weaknesses"].([]any); ok {
		for _, it := range items {
			switch v := it.(type) {
			case map[string]any:
				r.Weaknesses = append(r.Weaknesses, Weakness{Point: asString(v["point"]), Consequence: asString(v["consequence"])})
			case string:
				r.Weaknesses = append(r.Weaknesses, Weakness{Point: v})
			}
		}
	}

	if ba, ok := m["beforeAfterExample"].(map[string]any); ok {
		r.BeforeAfterExample = BeforeAfter{
			Before:      asString(ba["before"]),
			After:       asString(ba["after"]),
			Explanation: asString(ba["explanation"]),
		}
	}

	if items, ok := m["growthTips"].([]any); ok {
		for _, it := range items {
			if tip, ok := coerceTip(it); ok {
				r.GrowthTips = append(r.GrowthTips, tip)
			}
		}
	}

	r.fillEmpty()
	return r
}

func coerceTip(v any) (GrowthTip, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return GrowthTip{}, false
	}
	label, _ := obj["category"].(string)
	cat, ok := ParseTipCategory(label)
	if !ok {
		return GrowthTip{}, false
	}
	label, _ = obj["impact"].(string)
	impact, ok := ParseImpact(label)
	if !ok {
		return GrowthTip{}, false
	}
	title, ok := optionalString(obj, "title")
	if !ok {
		return GrowthTip{}, false
	}
	desc, ok := optionalString(obj, "description")
	if !ok {
		return GrowthTip{}, false
	}
	return GrowthTip{Category: cat, Title: title, Description: desc, Impact: impact}, true
}

// optionalString returns "" for an absent key and rejects present non-strings.
func optionalString(obj map[string]any, key string) (string, bool) {
	v, present := obj[key]
	if !present || v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

func coerceScore(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return DefaultScore
		}
		f = parsed
	default:
		return DefaultScore
	}
	if math.IsNaN(f) || f < 0 || f > 100 {
		return DefaultScore
	}
	return int(math.Round(f))
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
