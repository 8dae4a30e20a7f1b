package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/util"
)

// OllamaBackend uses a local Ollama model as a three-way NLI judge
type OllamaBackend struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaBackend creates a new Ollama backend
func NewOllamaBackend(config Config) (*OllamaBackend, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // Ollama can be slower for local models
	}

	return &OllamaBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// Load checks Ollama is running by listing local models
func (b *OllamaBackend) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", b.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("availability check failed (HTTP %d from %s)", resp.StatusCode, b.baseURL)
	}
	return nil
}

// Classify asks the model for class probabilities in JSON mode
func (b *OllamaBackend) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	maxTokens := b.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	resp, err := b.makeRequest(ctx, ollamaRequest{
		Model:  b.config.Model,
		Prompt: BuildPrompt(premise, hypothesis),
		Stream: false,
		System: judgeSystemPrompt,
		Format: "json",
		Options: ollamaOptions{
			Temperature: 0,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("ollama API error: %w", err)
	}

	return parseJudgeReply(resp.Response)
}

// makeRequest makes an HTTP request to the Ollama API
func (b *OllamaBackend) makeRequest(ctx context.Context, apiReq ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
