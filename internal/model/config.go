package model

import "time"

// Config is the process-level application configuration.
// Scoring constants live in ScoreConfig and are reloaded per run instead.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Search       SearchConfig      `yaml:"search" mapstructure:"search"`
	NLI          NLIConfig         `yaml:"nli" mapstructure:"nli"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Pipeline     PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls outbound page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SearchConfig selects and configures the search provider
type SearchConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey   string        `yaml:"-" mapstructure:"api_key"` // SERPER_API_KEY, never written to disk
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// NLIConfig selects the entailment backend
type NLIConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // tei, openai, ollama, anthropic
	Model     string `yaml:"model" mapstructure:"model"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr    string `yaml:"addr" mapstructure:"addr"`
	Preload bool   `yaml:"preload" mapstructure:"preload"` // Load the NLI backend before listening
}

// PipelineConfig sizes one verification run
type PipelineConfig struct {
	SearchK         int           `yaml:"search_k" mapstructure:"search_k"`
	FetchK          int           `yaml:"fetch_k" mapstructure:"fetch_k"`
	ChunksPerPage   int           `yaml:"chunks_per_page" mapstructure:"chunks_per_page"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ScoreConfigPath string        `yaml:"score_config_path" mapstructure:"score_config_path"`
}

// RateLimitConfig bounds per-domain fetch rate
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Per-host requests per second, e.g. {"www.gov.il": 0.5}
	Domains map[string]float64 `yaml:"domains,omitempty" mapstructure:"domains"`
}

// ConcurrencyConfig sizes batch verification
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultUserAgent is sent on every outbound page request
const DefaultUserAgent = "Mozilla/5.0 (compatible; FactCheck/1.0; +https://github.com/lihivismel/Fact-Check)"

// DefaultConfig returns the built-in application defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     DefaultUserAgent,
			MaxBodyBytes:  4_000_000,
			RespectRobots: true,
		},
		Search: SearchConfig{
			Provider: "serper",
			Endpoint: "https://google.serper.dev/search",
			Timeout:  15 * time.Second,
		},
		NLI: NLIConfig{
			Provider:  "tei",
			BaseURL:   "http://localhost:8080",
			Timeout:   30,
			MaxTokens: 200,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Pipeline: PipelineConfig{
			SearchK:         20,
			FetchK:          10,
			ChunksPerPage:   6,
			Timeout:         2 * time.Minute,
			ScoreConfigPath: "config.json",
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
