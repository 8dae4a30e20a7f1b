package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lihivismel/Fact-Check/internal/model"
)

func sampleResult() *model.VerifyResult {
	published := "2025-05-01"
	return &model.VerifyResult{
		Claim:          testClaim,
		Score:          43.1,
		ScoreHeuristic: 30,
		ScoreNLI:       47.5,
		UniqueDomains:  2,
		CoverageBucket: "low",
		CoverageFactor: 0.5,
		Sources: []model.EvidenceItem{{
			URL:                "https://www.gov.il/reservoir",
			Domain:             "www.gov.il",
			Title:              "Reservoir [update]",
			PublishedAt:        &published,
			NLIEvaluated:       true,
			NLIIncluded:        true,
			NLIMaxEntail:       0.75,
			NLIMaxContra:       0.25,
			NLIBestEntailChunk: "The reservoir opened.",
			NLIScoreComponent:  47.5,
			DomainBonus:        1,
		}},
		Notes: model.DefaultNotes,
	}
}

func TestRenderer_Markdown(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleResult())

	for _, want := range []string{
		"> " + testClaim,
		"**Score: 43.1 / 100**",
		"| NLI | 47.5 |",
		"[Reservoir \\[update\\]](https://www.gov.il/reservoir)",
		"supports: \"The reservoir opened.\"",
		"published 2025-05-01",
		"not a verdict on truth",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "contradicts:") {
		t.Error("Expected redacted contradiction excerpt to be omitted")
	}

	if strings.Contains(NewRenderer(false).Markdown(sampleResult()), "not a verdict") {
		t.Error("Expected footer to be omitted when disabled")
	}
}

func TestRenderer_MarkdownNoSources(t *testing.T) {
	r := sampleResult()
	r.Sources = nil
	if md := NewRenderer(false).Markdown(r); !strings.Contains(md, "No source passed") {
		t.Errorf("Expected empty-sources note, got:\n%s", md)
	}
}

func TestRenderer_RenderFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "result.json")
	mdPath := filepath.Join(dir, "out", "result.md")

	r := NewRenderer(false)
	if err := r.RenderJSON(sampleResult(), jsonPath); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if err := r.RenderMarkdown(sampleResult(), mdPath); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read JSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded["score"] != 43.1 {
		t.Errorf("Expected score 43.1, got %v", decoded["score"])
	}
	sources := decoded["sources"].([]any)
	first := sources[0].(map[string]any)
	if _, ok := first["nli_best_ent_chunk"]; !ok {
		t.Error("Expected nli_best_ent_chunk field in source")
	}

	if _, err := os.Stat(mdPath); err != nil {
		t.Errorf("Expected markdown file, got %v", err)
	}
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, sampleResult())

	out := buf.String()
	if !strings.Contains(out, "Score: 43.1/100") || !strings.Contains(out, "www.gov.il") {
		t.Errorf("Unexpected summary:\n%s", out)
	}
}
