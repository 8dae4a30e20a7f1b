package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lihivismel/Fact-Check/internal/config"
	"github.com/lihivismel/Fact-Check/internal/model"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage factcheck configuration",
	Long: `Manage factcheck configuration files and settings.

Two files are involved:
- The application config (~/.factcheck/config.yaml): providers, HTTP, server.
- The score config (config.json or $FACTCHECK_CONFIG): scoring constants,
  re-read on every verification so it can be tuned while the server runs.

Application config hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FACTCHECK_*, SERPER_API_KEY)
3. Config file (~/.factcheck/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, string(yamlData))

		scorePath := config.ResolvePath(cfg.Pipeline.ScoreConfigPath)
		if _, err := config.Load(scorePath); err != nil {
			fmt.Fprintf(out, "# score config: %s (using defaults: %v)\n", scorePath, err)
		} else {
			fmt.Fprintf(out, "# score config: %s\n", scorePath)
		}
		fmt.Fprintf(out, "# search api key: %s\n", presence(cfg.Search.APIKey))
		fmt.Fprintf(out, "# nli api key:    %s\n", presence(cfg.NLI.APIKey))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default configuration files",
	Long: `Create ~/.factcheck/config.yaml with the application defaults and a score
config JSON (default ./config.json) with the compiled-in scoring constants.
Existing files are left untouched unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		appPath := filepath.Join(home, ".factcheck", "config.yaml")
		if cfgFile != "" {
			appPath = cfgFile
		}
		if err := writeAppConfig(appPath, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Created application config: %s\n", appPath)

		scorePath := config.ResolvePath(viper.GetString("pipeline.score_config_path"))
		if err := writeScoreConfig(scorePath, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Created score config: %s\n", scorePath)

		fmt.Fprintf(os.Stderr, "\nTo view the configuration:\n")
		fmt.Fprintf(os.Stderr, "  factcheck config show\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite existing files")
}

func writeAppConfig(path string, force bool) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	header := "# factcheck application config\n" +
		"#\n" +
		"# Secrets are read from the environment only:\n" +
		"#   export SERPER_API_KEY=...\n" +
		"#   export OPENAI_API_KEY=sk-...        (nli.provider: openai)\n" +
		"#   export ANTHROPIC_API_KEY=sk-ant-... (nli.provider: anthropic)\n\n"

	return createFile(path, append([]byte(header), data...), force)
}

func writeScoreConfig(path string, force bool) error {
	data, err := json.MarshalIndent(model.DefaultScoreConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling score config: %w", err)
	}
	return createFile(path, append(data, '\n'), force)
}

func createFile(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("file already exists: %s\nUse --force to overwrite it", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func presence(secret string) string {
	if secret == "" {
		return "not set"
	}
	return "set"
}
