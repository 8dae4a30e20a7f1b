package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lihivismel/Fact-Check/internal/pipeline"
	"github.com/lihivismel/Fact-Check/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
	writeMD      bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file in parallel",
	Long: `Batch verifies every claim in a file concurrently:
- Read claims from the input file (one per line, # starts a comment)
- Verify claims in parallel with a configurable worker count
- Write one JSON result (and optionally Markdown) per claim

Example:
  factcheck batch claims.txt
  factcheck batch claims.txt --concurrency 2 --output-dir ./results --md`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("concurrency", 0, "number of concurrent claims (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factcheck-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&writeMD, "md", false, "also write a Markdown report per claim")

	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, components, _, err := buildPipeline(false)
	if err != nil {
		return err
	}
	workers := cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  NLI:          %s/%s\n", components.NLI.Provider(), components.NLI.ModelName())
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Load once up front so a broken backend fails the batch instead of every claim
	if err := components.NLI.EnsureLoaded(ctx); err != nil {
		return fmt.Errorf("load nli: %w", err)
	}

	processor := worker.NewBatchProcessor(components.Pipeline, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, res := range results {
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Claim, res.Error)
			continue
		}

		base := filepath.Join(outputDir, fmt.Sprintf("%03d-%s", res.Index+1, slugify(res.Claim)))
		if err := renderer.RenderJSON(res.Result, base+".json"); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", res.Claim, err)
			continue
		}
		if writeMD {
			if err := renderer.RenderMarkdown(res.Result, base+".md"); err != nil {
				failureCount++
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", res.Claim, err)
				continue
			}
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (score: %.1f/100, %s)\n", res.Claim, res.Result.Score, res.Elapsed.Round(time.Millisecond))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d claims failed", failureCount)
	}
	return nil
}

// slugify turns a claim into a short filesystem-safe name
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if runes := []rune(slug); len(runes) > 60 {
		slug = strings.TrimRight(string(runes[:60]), "-")
	}
	if slug == "" {
		slug = "claim"
	}
	return slug
}
