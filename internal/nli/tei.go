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

// TEIBackend classifies pairs with a sequence-classification model served by
// a text-embeddings-inference compatible server
type TEIBackend struct {
	baseURL    string
	httpClient *http.Client
	config     Config
	modelID    string
}

// TEI API structures
type teiPredictRequest struct {
	Inputs    [][2]string `json:"inputs"`
	Truncate  bool        `json:"truncate"`
	RawScores bool        `json:"raw_scores"`
}

type teiPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type teiInfo struct {
	ModelID   string `json:"model_id"`
	ModelType struct {
		Classifier *struct {
			ID2Label map[string]string `json:"id2label"`
		} `json:"classifier"`
	} `json:"model_type"`
}

type teiError struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
}

// NewTEIBackend creates a new TEI backend
func NewTEIBackend(config Config) (*TEIBackend, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TEIBackend{
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
func (b *TEIBackend) Name() string {
	return "tei"
}

// ModelID returns the model reported by the server after Load
func (b *TEIBackend) ModelID() string {
	return b.modelID
}

// Load probes /info and checks the served model exposes all three NLI labels
func (b *TEIBackend) Load(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/info", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", b.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("info check failed (HTTP %d from %s)", resp.StatusCode, b.baseURL)
	}

	var info teiInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decode info: %w", err)
	}
	b.modelID = info.ModelID

	if c := info.ModelType.Classifier; c != nil && len(c.ID2Label) > 0 {
		labels := make([]string, 0, len(c.ID2Label))
		for _, l := range c.ID2Label {
			labels = append(labels, l)
		}
		if !hasAllLabels(labels) {
			return fmt.Errorf("model labels %v do not cover entailment/neutral/contradiction", labels)
		}
	}

	return nil
}

// Classify sends one pair to /predict
func (b *TEIBackend) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	body, err := json.Marshal(teiPredictRequest{
		Inputs:   [][2]string{{premise, hypothesis}},
		Truncate: true,
	})
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return model.EntailmentScores{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr teiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return model.EntailmentScores{}, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return model.EntailmentScores{}, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	preds, err := decodePredictions(respBody)
	if err != nil {
		return model.EntailmentScores{}, err
	}

	probs := make(map[string]float64, 3)
	for _, p := range preds {
		if name, ok := NormalizeLabel(p.Label); ok {
			probs[name] = p.Score
		}
	}
	return fromProbabilities(probs)
}

// decodePredictions accepts both the single ([{...}]) and batched ([[{...}]]) response shapes
func decodePredictions(body []byte) ([]teiPrediction, error) {
	var batched [][]teiPrediction
	if err := json.Unmarshal(body, &batched); err == nil {
		if len(batched) == 0 {
			return nil, fmt.Errorf("empty prediction batch")
		}
		return batched[0], nil
	}

	var single []teiPrediction
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return single, nil
}
