// Package budget estimates whether an audit prompt fits a model's context
// window. Estimates are heuristics, not tokenizer counts.
package budget

import (
    "math"
    "strings"
    "unicode/utf8"
)

// charsPerToken is lower than the usual English figure because Polish
// diacritics and inflection split into more tokens.
const charsPerToken = 3.0

// DefaultReservedOutput is the completion size kept free for one micro-format
// answer. The longest stage (growth tips) stays well under it.
const DefaultReservedOutput = 1024

// EstimateTokens returns a conservative token estimate for s, counting runes
// so multi-byte letters are not overcounted. At least 1 for non-empty input.
func EstimateTokens(s string) int {
    n := utf8.RuneCountInString(s)
    if n == 0 {
        return 0
    }
    return int(math.Ceil(float64(n) / charsPerToken))
}

// ModelContextTokens returns an estimated context window for modelName.
// Unknown models fall back to a small conservative default.
func ModelContextTokens(modelName string) int {
    name := strings.ToLower(strings.TrimSpace(modelName))
    if name == "" {
        return 8192
    }
    if v, ok := knownModelMax[name]; ok {
        return v
    }
    // Versioned names such as "gemini-1.5-flash-002" share the family window
    for prefix, v := range familyMax {
        if strings.HasPrefix(name, prefix) {
            return v
        }
    }
    switch {
    case strings.HasSuffix(name, "1m"):
        return 1_000_000
    case strings.HasSuffix(name, "128k"):
        return 128_000
    case strings.HasSuffix(name, "32k"):
        return 32_768
    case strings.Contains(name, "-mini"):
        return 128_000
    }
    return 8192
}

// HeadroomTokens is subtracted from the window to absorb tokenizer and
// message framing differences: 5% of the window with a 256 token floor.
func HeadroomTokens(modelName string) int {
    dyn := int(math.Ceil(float64(ModelContextTokens(modelName)) * 0.05))
    if dyn < 256 {
        return 256
    }
    return dyn
}

// Estimate is the budget of a single chat call.
type Estimate struct {
    PromptTokens   int  `json:"prompt_tokens"`
    ReservedOutput int  `json:"reserved_output"`
    ModelContext   int  `json:"model_context"`
    Remaining      int  `json:"remaining"`
    Fits           bool `json:"fits"`
}

// EstimateCall sizes a system plus user prompt against modelName. Remaining
// is never negative.
func EstimateCall(modelName, system, user string, reservedOutput int) Estimate {
    if reservedOutput <= 0 {
        reservedOutput = DefaultReservedOutput
    }
    e := Estimate{
        PromptTokens:   EstimateTokens(system) + EstimateTokens(user),
        ReservedOutput: reservedOutput,
        ModelContext:   ModelContextTokens(modelName),
    }
    e.Remaining = e.ModelContext - HeadroomTokens(modelName) - reservedOutput - e.PromptTokens
    e.Fits = e.Remaining > 0
    if e.Remaining < 0 {
        e.Remaining = 0
    }
    return e
}

// Largest returns the estimate with the biggest prompt.
func Largest(estimates []Estimate) Estimate {
    var out Estimate
    for i, e := range estimates {
        if i == 0 || e.PromptTokens > out.PromptTokens {
            out = e
        }
    }
    return out
}

// knownModelMax holds rough context sizes for models commonly pointed at
// this tool. Best-effort, not exhaustive.
var knownModelMax = map[string]int{
    "gpt-4o":        128_000,
    "gpt-4o-mini":   128_000,
    "gpt-4-turbo":   128_000,
    "gpt-3.5-turbo": 16_384,
    "llama3.1":      128_000,
    "llama-3.1":     128_000,
    "llama3":        8_192,
    "mistral":       32_768,
    "gpt-oss-20b":   4_096,
}

var familyMax = map[string]int{
    "gemini-1.5-pro":   2_000_000,
    "gemini-1.5-flash": 1_000_000,
    "gemini-2.0-flash": 1_000_000,
    "gemini-2.5":       1_000_000,
    "qwen2.5":          32_768,
}
