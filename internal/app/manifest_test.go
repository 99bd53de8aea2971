package app

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/salonaudit/internal/pricelist"
	"github.com/hyperifyio/salonaudit/internal/report"
)

func TestComputeSHA256Hex(t *testing.T) {
	got := computeSHA256Hex([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("sha256 mismatch: %s", got)
	}
}

func TestMarshalBundle_ShapeAndOmissions(t *testing.T) {
	doc := pricelist.ParseText("## Brwi\nHenna brwi 30 zł")
	b := resultBundle{
		Manifest: manifestMeta{RunID: "r1", Model: "m", GrammarVersion: "g", GeneratedAt: time.Unix(0, 0).UTC()},
		Document: doc,
	}
	raw, err := marshalBundle(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "sourceText") {
		t.Fatalf("source text must not be written: %s", raw)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"manifest", "document", "statistics"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing %q in bundle", k)
		}
	}
	if _, ok := m["report"]; ok {
		t.Fatalf("report should be omitted when nil")
	}
	if doc.SourceText == "" {
		t.Fatalf("caller's document must not be modified")
	}

	r := report.AuditReport{OverallScore: 70}
	b.Report = &r
	raw, _ = marshalBundle(b)
	if !strings.Contains(string(raw), `"overallScore": 70`) {
		t.Fatalf("report not encoded: %s", raw)
	}
}
