package nli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIBackend uses an OpenAI chat model as a three-way NLI judge
type OpenAIBackend struct {
	client *openai.Client
	config Config
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(config Config) (*OpenAIBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Load checks the API key by listing models
func (b *OpenAIBackend) Load(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API check failed: %w", err)
	}
	return nil
}

// Classify asks the chat model for class probabilities as a JSON object
func (b *OpenAIBackend) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	modelName := b.config.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	maxTokens := b.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	timeout := time.Duration(b.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := b.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(premise, hypothesis)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return model.EntailmentScores{}, fmt.Errorf("no response from OpenAI")
	}

	return parseJudgeReply(resp.Choices[0].Message.Content)
}
