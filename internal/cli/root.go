package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/pipeline"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factcheck",
	Short: "factcheck - evidence-based claim plausibility scoring",
	Long: `factcheck scores how plausible a short factual claim is, on a 0-100 scale,
from the web evidence it can find.

It searches for the claim, fetches the top pages, selects the passages that
mention the claim's keywords, runs a natural language inference model over
them and blends the result with a source/recency/coverage heuristic.

The score measures evidential support. It is not a verdict on truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "factcheck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("nli-provider", "", "NLI backend (tei, openai, ollama, anthropic)")
	rootCmd.PersistentFlags().String("nli-model", "", "NLI model name")
	rootCmd.PersistentFlags().String("score-config", "", "score config JSON (default: $FACTCHECK_CONFIG or ./config.json)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("nli.provider", rootCmd.PersistentFlags().Lookup("nli-provider"))
	_ = viper.BindPFlag("nli.model", rootCmd.PersistentFlags().Lookup("nli-model"))
	_ = viper.BindPFlag("pipeline.score_config_path", rootCmd.PersistentFlags().Lookup("score-config"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(home + "/.factcheck")
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FACTCHECK_PIPELINE_FETCH_K overrides pipeline.fetch_k, and so on
	viper.SetEnvPrefix("FACTCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Secrets keep their conventional names
	_ = viper.BindEnv("search.api_key", "FACTCHECK_SEARCH_API_KEY", "SERPER_API_KEY")
	_ = viper.BindEnv("nli.api_key", "FACTCHECK_NLI_API_KEY")

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every field of cfg as a viper default so that
// environment overrides apply to keys absent from the config file.
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	walkDefaults(v, "", tree)
	return nil
}

func walkDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			walkDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, value)
	}
}

// loadConfig resolves the application config from defaults, file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderEnv(cfg)
	return cfg, nil
}

// applyProviderEnv fills NLI credentials from the provider's usual variables
func applyProviderEnv(cfg *model.Config) {
	switch strings.ToLower(cfg.NLI.Provider) {
	case "openai":
		if cfg.NLI.APIKey == "" {
			cfg.NLI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.NLI.APIKey == "" {
			cfg.NLI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.NLI.BaseURL == model.DefaultConfig().NLI.BaseURL {
			cfg.NLI.BaseURL = baseURL
		}
	}
}

// newLogger builds the process logger. The server logs JSON, commands log text.
func newLogger(w io.Writer, json bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || viper.GetBool("output.verbose") {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// buildPipeline loads the config and wires the production collaborators
func buildPipeline(jsonLogs bool) (*model.Config, *pipeline.Components, *slog.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(os.Stderr, jsonLogs)

	components, err := pipeline.Build(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return cfg, components, logger, nil
}
