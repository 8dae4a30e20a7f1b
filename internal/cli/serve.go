package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lihivismel/Fact-Check/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification API over HTTP",
	Long: `Serve exposes the pipeline as a JSON API:

  GET  /health       liveness probe
  POST /api/search   {"q": "..."}
  POST /api/fetch    {"url": "..."}
  POST /api/verify   {"claim": "..."}

With --preload the NLI backend is loaded before the listener starts and a
load failure stops the process.

Example:
  factcheck serve --addr :8000 --preload`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().Bool("preload", false, "load the NLI model before accepting requests")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.preload", serveCmd.Flags().Lookup("preload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, components, logger, err := buildPipeline(true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Preload {
		logger.Info("Preloading NLI model", "provider", components.NLI.Provider(), "model", components.NLI.ModelName())
		if err := components.NLI.EnsureLoaded(ctx); err != nil {
			return fmt.Errorf("preload nli: %w", err)
		}
	}

	srv := server.NewServer(components.Pipeline, components.Searcher, components.Fetcher, logger)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
