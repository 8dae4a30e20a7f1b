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

// AnthropicBackend uses a Claude model as a three-way NLI judge
type AnthropicBackend struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Anthropic API structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicBackend creates a new Anthropic backend
func NewAnthropicBackend(config Config) (*AnthropicBackend, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &AnthropicBackend{
		apiKey:  config.APIKey,
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
func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

// Load validates that an API key is configured
func (b *AnthropicBackend) Load(ctx context.Context) error {
	if b.apiKey == "" {
		return fmt.Errorf("Anthropic API key is required")
	}
	return ctx.Err()
}

// Classify asks Claude for class probabilities as a JSON object
func (b *AnthropicBackend) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	modelName := b.config.Model
	if modelName == "" {
		modelName = "claude-3-5-haiku-20241022"
	}

	maxTokens := b.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	resp, err := b.makeRequest(ctx, anthropicRequest{
		Model:     modelName,
		MaxTokens: maxTokens,
		System:    judgeSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(premise, hypothesis)},
		},
		Temperature: 0,
	})
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("Anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return model.EntailmentScores{}, fmt.Errorf("no content in Anthropic response")
	}

	return parseJudgeReply(resp.Content[0].Text)
}

// makeRequest makes an HTTP request to the Anthropic API
func (b *AnthropicBackend) makeRequest(ctx context.Context, apiReq anthropicRequest) (*anthropicResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

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
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil {
			return nil, fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
