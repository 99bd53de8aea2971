package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hyperifyio/salonaudit/internal/budget"
	"github.com/hyperifyio/salonaudit/internal/pricelist"
	"github.com/hyperifyio/salonaudit/internal/report"
	"github.com/hyperifyio/salonaudit/internal/stats"
)

// manifestMeta captures run details that aid reproducibility.
type manifestMeta struct {
	RunID          string          `json:"run_id"`
	RecordID       string          `json:"record_id,omitempty"`
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
	LLMBaseURL     string          `json:"llm_base_url,omitempty"`
	GrammarVersion string          `json:"grammar_version"`
	InputSHA256    string          `json:"input_sha256"`
	UsedFallback   bool            `json:"used_fallback"`
	LLMCache       bool            `json:"llm_cache"`
	DryRun         bool            `json:"dry_run"`
	Budget         budget.Estimate `json:"budget"`
	BuildVersion   string          `json:"build_version"`
	BuildCommit    string          `json:"build_commit"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// resultBundle is the JSON document written to the output path.
type resultBundle struct {
	Manifest   manifestMeta        `json:"manifest"`
	Document   pricelist.Document  `json:"document"`
	Statistics stats.Statistics    `json:"statistics"`
	Report     *report.AuditReport `json:"report,omitempty"`
	Summary    string              `json:"summary,omitempty"`
}

// computeSHA256Hex returns a lowercase hex-encoded SHA-256 of b.
func computeSHA256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// marshalBundle encodes the bundle. Source text is omitted from the document
// since the manifest already carries its digest.
func marshalBundle(b resultBundle) ([]byte, error) {
	b.Document.SourceText = ""
	return json.MarshalIndent(b, "", "  ")
}
