// Package nli scores premise/hypothesis pairs with a natural language
// inference model and exposes the process-wide classifier handle.
package nli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// Classifier scores whether premise entails, contradicts or is neutral to hypothesis
type Classifier interface {
	Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error)
}

// Backend defines the interface for NLI inference providers
type Backend interface {
	// Name returns the provider name
	Name() string

	// Load verifies the backend is reachable and serves a usable model.
	// It is called once per process.
	Load(ctx context.Context) error

	// Classify returns class probabilities for one premise/hypothesis pair
	Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error)
}

// Config holds NLI backend configuration
type Config struct {
	// Provider name: "tei", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (TEI server, Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for LLM judge responses
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "tei",
		Model:     model.DefaultNLIModel,
		BaseURL:   "http://localhost:8080",
		Timeout:   30,
		MaxTokens: 200,
	}
}

// judgeSystemPrompt instructs chat models to act as a three-way NLI classifier
const judgeSystemPrompt = `You are a natural language inference classifier.
Given a PREMISE and a HYPOTHESIS, estimate the probability that the premise
entails the hypothesis, contradicts it, or is neutral toward it.
Judge only from the premise text. Do not use outside knowledge.
Reply with a single JSON object and nothing else:
{"entailment": <0..1>, "contradiction": <0..1>, "neutral": <0..1>}`

// BuildPrompt constructs the user message for LLM judge backends
func BuildPrompt(premise, hypothesis string) string {
	return fmt.Sprintf("PREMISE:\n%s\n\nHYPOTHESIS:\n%s", premise, hypothesis)
}

// parseJudgeReply extracts class probabilities from an LLM judge reply.
// The values are normalised to sum to 1.
func parseJudgeReply(reply string) (model.EntailmentScores, error) {
	reply = strings.TrimSpace(reply)
	if start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}"); start >= 0 && end > start {
		reply = reply[start : end+1]
	}

	var raw map[string]float64
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return model.EntailmentScores{}, fmt.Errorf("parse judge reply: %w", err)
	}

	probs := make(map[string]float64, 3)
	for label, p := range raw {
		if name, ok := NormalizeLabel(label); ok {
			probs[name] = p
		}
	}
	return fromProbabilities(probs)
}

// fromProbabilities validates and normalises a label -> probability map
func fromProbabilities(probs map[string]float64) (model.EntailmentScores, error) {
	for _, name := range []string{LabelEntailment, LabelContradiction, LabelNeutral} {
		p, ok := probs[name]
		if !ok {
			return model.EntailmentScores{}, fmt.Errorf("missing %s probability", name)
		}
		if math.IsNaN(p) || p < 0 {
			return model.EntailmentScores{}, fmt.Errorf("invalid %s probability %v", name, p)
		}
	}

	sum := probs[LabelEntailment] + probs[LabelContradiction] + probs[LabelNeutral]
	if sum <= 0 {
		return model.EntailmentScores{}, fmt.Errorf("probabilities sum to zero")
	}

	return model.EntailmentScores{
		Entailment:    probs[LabelEntailment] / sum,
		Contradiction: probs[LabelContradiction] / sum,
		Neutral:       probs[LabelNeutral] / sum,
	}, nil
}
