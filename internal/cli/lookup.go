package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lihivismel/Fact-Check/internal/scrape"
	"github.com/lihivismel/Fact-Check/internal/search"
	"github.com/lihivismel/Fact-Check/internal/worker"
)

var (
	searchLimit int
	showText    bool
)

// searchCmd runs only the search stage
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a web search and print the deduplicated hits",
	Long: `Search queries the configured provider (Serper) and prints the hits the
pipeline would consider, one per domain, ordered by rank.

Example:
  factcheck search "Jerusalem light rail Blue Line"
  factcheck search "..." -k 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// fetchCmd runs only the fetch and extraction stage
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a page and print the extracted record as JSON",
	Long: `Fetch downloads one page the way the pipeline does (robots.txt, rate
limits, charset decoding) and prints the extracted page record.

Example:
  factcheck fetch https://www.gov.il/en/departments/news/example
  factcheck fetch https://example.com --text`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(fetchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 12, "number of hits to print")
	fetchCmd.Flags().BoolVar(&showText, "text", false, "include the full extracted text")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, false)

	searcher, err := search.NewSearcher(cfg.Search, cfg.HTTP, logger)
	if err != nil {
		return fmt.Errorf("create searcher: %w", err)
	}

	hits, err := searcher.Search(context.Background(), query, cfg.Pipeline.SearchK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchLimit > 0 && len(hits) > searchLimit {
		hits = hits[:searchLimit]
	}

	out := cmd.OutOrStdout()
	for _, h := range hits {
		fmt.Fprintf(out, "%2d. [%s] %s\n    %s\n", h.Rank, h.Domain, h.Title, h.Link)
	}
	if len(hits) == 0 {
		fmt.Fprintln(os.Stderr, "No results")
	}
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, false)

	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	fetcher := scrape.NewFetcher(cfg.HTTP, limiter, logger)

	page := fetcher.Fetch(context.Background(), args[0])
	if runes := []rune(page.Text); !showText && len(runes) > 500 {
		page.Text = string(runes[:500]) + "..."
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(page); err != nil {
		return fmt.Errorf("encode page: %w", err)
	}

	if !page.OK && page.Reason != nil {
		return fmt.Errorf("fetch failed: %s", *page.Reason)
	}
	return nil
}
