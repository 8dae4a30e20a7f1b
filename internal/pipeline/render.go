package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// Renderer writes verification results as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// EncodeJSON writes the result as indented JSON
func (r *Renderer) EncodeJSON(w io.Writer, result *model.VerifyResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderJSON writes the result as JSON to path
func (r *Renderer) RenderJSON(result *model.VerifyResult, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.EncodeJSON(w, result)
	})
}

// RenderMarkdown writes the result as Markdown to path
func (r *Renderer) RenderMarkdown(result *model.VerifyResult, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(result))
		return err
	})
}

// Markdown formats the result as a Markdown document
func (r *Renderer) Markdown(result *model.VerifyResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claim check\n\n> %s\n\n", result.Claim)
	fmt.Fprintf(&b, "**Score: %.1f / 100**\n\n", result.Score)

	b.WriteString("| Component | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Heuristic | %.1f |\n", result.ScoreHeuristic)
	fmt.Fprintf(&b, "| NLI | %.1f |\n", result.ScoreNLI)
	fmt.Fprintf(&b, "| Unique domains | %d |\n", result.UniqueDomains)
	fmt.Fprintf(&b, "| Coverage | %s (x%.2f) |\n\n", result.CoverageBucket, result.CoverageFactor)

	b.WriteString("## Sources\n\n")
	if len(result.Sources) == 0 {
		b.WriteString("_No source passed the evidence gates._\n\n")
	}
	for i, s := range result.Sources {
		title := s.Title
		if title == "" {
			title = s.Domain
		}
		fmt.Fprintf(&b, "%d. [%s](%s) (%s)\n", i+1, escapeMarkdown(title), s.URL, s.Domain)
		fmt.Fprintf(&b, "   - entailment %.3f, contradiction %.3f, component %.1f\n", s.NLIMaxEntail, s.NLIMaxContra, s.NLIScoreComponent)
		if s.PublishedAt != nil {
			fmt.Fprintf(&b, "   - published %s\n", *s.PublishedAt)
		}
		if s.NLIBestEntailChunk != "" {
			fmt.Fprintf(&b, "   - supports: \"%s\"\n", s.NLIBestEntailChunk)
		}
		if s.NLIBestContraChunk != "" {
			fmt.Fprintf(&b, "   - contradicts: \"%s\"\n", s.NLIBestContraChunk)
		}
	}
	b.WriteString("\n")

	if len(result.Signals) > 0 {
		b.WriteString("## Breakdown\n\n")
		for _, sig := range result.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", sig.Type, sig.Severity, sig.Description)
		}
		b.WriteString("\n")
	}

	if result.Notes != "" {
		fmt.Fprintf(&b, "_%s_\n", result.Notes)
	}

	if r.includeFooter {
		b.WriteString("\n---\n\nScores measure how well available sources support the claim. They are not a verdict on truth.\n")
	}

	return b.String()
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, result *model.VerifyResult) {
	_, _ = fmt.Fprintf(w, "Claim: %s\n", result.Claim)
	_, _ = fmt.Fprintf(w, "Score: %.1f/100 (heuristic %.1f, nli %.1f)\n", result.Score, result.ScoreHeuristic, result.ScoreNLI)
	_, _ = fmt.Fprintf(w, "Coverage: %s, %d unique domains\n", result.CoverageBucket, result.UniqueDomains)
	for i, s := range result.Sources {
		_, _ = fmt.Fprintf(w, "  %d. %s  e=%.3f c=%.3f  %s\n", i+1, s.Domain, s.NLIMaxEntail, s.NLIMaxContra, s.URL)
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("[", "\\[", "]", "\\]").Replace(s)
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
