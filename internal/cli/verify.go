package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lihivismel/Fact-Check/internal/pipeline"
)

var (
	outJSON  string
	outMD    string
	noFooter bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claim>",
	Short: "Score the plausibility of a single claim",
	Long: `Verify runs one claim through the full pipeline:
- Search the web for the claim
- Fetch and extract the top pages
- Select the passages that mention the claim's keywords
- Score them with the NLI model and the source heuristic
- Print a transparent breakdown of the blended score

Example:
  factcheck verify "The Jerusalem light rail Blue Line opened in 2025"
  factcheck verify "..." --json result.json --md result.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON result to this path (\"-\" for stdout)")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "write a Markdown report to this path")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runVerify(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	cfg, components, _, err := buildPipeline(false)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", claim)
		fmt.Fprintf(os.Stderr, "NLI: %s/%s\n", components.NLI.Provider(), components.NLI.ModelName())
		fmt.Fprintln(os.Stderr)
	}

	result, err := components.Pipeline.Verify(context.Background(), claim)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter && !noFooter)
	out := cmd.OutOrStdout()

	switch outJSON {
	case "":
	case "-":
		if err := renderer.EncodeJSON(out, result); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	default:
		if err := renderer.RenderJSON(result, outJSON); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON written to %s\n", outJSON)
	}

	if outMD != "" {
		if err := renderer.RenderMarkdown(result, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown written to %s\n", outMD)
	}

	if outJSON != "-" {
		renderer.RenderSummary(out, result)
	}
	return nil
}
