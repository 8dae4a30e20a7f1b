package score

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/lihivismel/Fact-Check/internal/chunk"
	"github.com/lihivismel/Fact-Check/internal/model"
	"github.com/lihivismel/Fact-Check/internal/nli"
)

// fakeClassifier returns canned scores keyed by premise
type fakeClassifier struct {
	scores map[string]model.EntailmentScores
	errs   map[string]error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, premise, hypothesis string) (model.EntailmentScores, error) {
	f.calls++
	if err, ok := f.errs[premise]; ok {
		return model.EntailmentScores{}, err
	}
	return f.scores[premise], nil
}

func ev(url, domain string) model.Evidence {
	return model.Evidence{URL: url, Domain: domain}
}

func cand(url, domain, text string) chunk.Candidate {
	return chunk.Candidate{URL: url, Domain: domain, Text: text, Hits: 2}
}

func TestAggregate_SingleSourceComponent(t *testing.T) {
	fc := &fakeClassifier{scores: map[string]model.EntailmentScores{
		"support": {Entailment: 0.9, Contradiction: 0.1},
	}}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	res, err := agg.Aggregate(context.Background(), "claim",
		[]model.Evidence{ev("https://a.com", "a.com")},
		[]chunk.Candidate{cand("https://a.com", "a.com", "support")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	src := res.Sources["https://a.com"]
	if !src.Included {
		t.Fatal("Expected source to be included")
	}
	if math.Abs(src.ScoreComponent-67) > 1e-9 {
		t.Errorf("Expected component 80*0.9 - 50*0.1 = 67, got %v", src.ScoreComponent)
	}
	if math.Abs(res.Score-67) > 1e-9 {
		t.Errorf("Expected NLI score 67, got %v", res.Score)
	}
}

func TestAggregate_RunningMaximaStrictReplacement(t *testing.T) {
	fc := &fakeClassifier{scores: map[string]model.EntailmentScores{
		"a": {Entailment: 0.5, Contradiction: 0.3},
		"b": {Entailment: 0.5, Contradiction: 0.6},
		"c": {Entailment: 0.4, Contradiction: 0.6},
	}}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	res, err := agg.Aggregate(context.Background(), "claim",
		[]model.Evidence{ev("u", "d")},
		[]chunk.Candidate{cand("u", "d", "a"), cand("u", "d", "b"), cand("u", "d", "c")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	src := res.Sources["u"]
	if src.MaxEntail != 0.5 || src.BestEntailChunk != "a" {
		t.Errorf("Expected max_e 0.5 from first chunk, got %v from %q", src.MaxEntail, src.BestEntailChunk)
	}
	if src.MaxContra != 0.6 || src.BestContraChunk != "b" {
		t.Errorf("Expected max_c 0.6 from chunk b, got %v from %q", src.MaxContra, src.BestContraChunk)
	}
	if src.Chunks != 3 {
		t.Errorf("Expected 3 classified chunks, got %d", src.Chunks)
	}
}

func TestAggregate_ConjunctiveGating(t *testing.T) {
	fc := &fakeClassifier{scores: map[string]model.EntailmentScores{
		"low-conf":       {Entailment: 0.15, Contradiction: 0.1},  // max(e,c) < 0.20
		"low-importance": {Entailment: 0.3, Contradiction: 0.05},  // e+c < 0.4
		"both":           {Entailment: 0.35, Contradiction: 0.1},  // passes both gates
		"contra":         {Entailment: 0.05, Contradiction: 0.85}, // passes, negative component
	}}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	evidence := []model.Evidence{ev("1", "a"), ev("2", "b"), ev("3", "c"), ev("4", "d")}
	cands := []chunk.Candidate{
		cand("1", "a", "low-conf"),
		cand("2", "b", "low-importance"),
		cand("3", "c", "both"),
		cand("4", "d", "contra"),
	}

	res, err := agg.Aggregate(context.Background(), "claim", evidence, cands)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if res.Sources["1"].Included || res.Sources["2"].Included {
		t.Error("Expected sources failing either gate to be excluded")
	}
	if !res.Sources["1"].Evaluated || !res.Sources["2"].Evaluated {
		t.Error("Expected excluded sources to still be evaluated")
	}
	if !res.Sources["3"].Included || !res.Sources["4"].Included {
		t.Error("Expected sources passing both gates to be included")
	}
	if res.Included != 2 {
		t.Errorf("Expected 2 included sources, got %d", res.Included)
	}

	// (80*0.35 - 50*0.1 + 80*0.05 - 50*0.85) / 2 = (23 - 38.5) / 2 < 0 -> clamped
	if res.Score != 0 {
		t.Errorf("Expected NLI score clamped to 0, got %v", res.Score)
	}
}

func TestAggregate_NoCandidates(t *testing.T) {
	fc := &fakeClassifier{}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	res, err := agg.Aggregate(context.Background(), "claim", []model.Evidence{ev("1", "a"), ev("2", "b")}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if res.Score != 0 || res.Included != 0 {
		t.Errorf("Expected score 0 with no candidates, got %v (%d included)", res.Score, res.Included)
	}
	if len(res.Sources) != 2 || res.Sources["1"].Evaluated {
		t.Errorf("Expected every page recorded as not evaluated, got %+v", res.Sources)
	}
	if fc.calls != 0 {
		t.Errorf("Expected no classifier calls, got %d", fc.calls)
	}
}

func TestAggregate_FailedChunkIsSkipped(t *testing.T) {
	fc := &fakeClassifier{
		scores: map[string]model.EntailmentScores{"good": {Entailment: 0.8, Contradiction: 0.1}},
		errs: map[string]error{
			"bad":   errors.New("HTTP 500"),
			"worse": errors.New("timeout"),
		},
	}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	evidence := []model.Evidence{ev("1", "a"), ev("2", "b")}
	cands := []chunk.Candidate{
		cand("1", "a", "bad"),
		cand("1", "a", "good"),
		cand("2", "b", "worse"),
	}

	res, err := agg.Aggregate(context.Background(), "claim", evidence, cands)
	if err != nil {
		t.Fatalf("Expected failures to be skipped, got %v", err)
	}

	if res.Failed != 2 || res.Evaluated != 1 {
		t.Errorf("Expected 2 failed / 1 evaluated, got %d / %d", res.Failed, res.Evaluated)
	}
	if !res.Sources["1"].Included || res.Sources["1"].Failed != 1 {
		t.Errorf("Expected source 1 included with 1 failure, got %+v", res.Sources["1"])
	}
	if res.Sources["2"].Evaluated {
		t.Error("Expected source with only failed chunks to be not evaluated")
	}

	signals := res.Signals(model.DefaultScoreConfig())
	found := false
	for _, s := range signals {
		if s.Type == model.SignalNLIFailures {
			found = true
		}
	}
	if !found {
		t.Error("Expected an nli_failures signal")
	}
}

func TestAggregate_FailedChunkLogsAtDebug(t *testing.T) {
	fc := &fakeClassifier{errs: map[string]error{"bad": errors.New("HTTP 500")}}
	evidence := []model.Evidence{ev("1", "a")}
	cands := []chunk.Candidate{cand("1", "a", "bad")}

	var info bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if _, err := NewAggregator(model.DefaultScoreConfig(), fc, logger).Aggregate(context.Background(), "claim", evidence, cands); err != nil {
		t.Fatalf("Expected failure to be skipped, got %v", err)
	}
	if info.Len() != 0 {
		t.Errorf("Expected nothing logged at info level, got %q", info.String())
	}

	var debug bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := NewAggregator(model.DefaultScoreConfig(), fc, logger).Aggregate(context.Background(), "claim", evidence, cands); err != nil {
		t.Fatalf("Expected failure to be skipped, got %v", err)
	}
	if !strings.Contains(debug.String(), "level=DEBUG") || !strings.Contains(debug.String(), "skipping chunk") {
		t.Errorf("Expected a debug record for the skipped chunk, got %q", debug.String())
	}
}

func TestAggregate_UnavailableAborts(t *testing.T) {
	fc := &fakeClassifier{errs: map[string]error{
		"x": fmt.Errorf("%w: tei: connection refused", nli.ErrUnavailable),
	}}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	_, err := agg.Aggregate(context.Background(), "claim",
		[]model.Evidence{ev("1", "a")},
		[]chunk.Candidate{cand("1", "a", "x"), cand("1", "a", "y")})
	if !errors.Is(err, nli.ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if fc.calls != 1 {
		t.Errorf("Expected abort after first call, got %d calls", fc.calls)
	}
}

func TestAggregate_ContextCancelled(t *testing.T) {
	fc := &fakeClassifier{}
	agg := NewAggregator(model.DefaultScoreConfig(), fc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Aggregate(ctx, "claim", []model.Evidence{ev("1", "a")}, []chunk.Candidate{cand("1", "a", "x")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestAggregate_NeutralWeight(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	cfg.NLINeutralWeight = 10

	fc := &fakeClassifier{scores: map[string]model.EntailmentScores{
		"x": {Entailment: 0.5, Contradiction: 0.0, Neutral: 0.5},
	}}

	res, err := NewAggregator(cfg, fc, nil).Aggregate(context.Background(), "claim",
		[]model.Evidence{ev("1", "a")}, []chunk.Candidate{cand("1", "a", "x")})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if math.Abs(res.Score-45) > 1e-9 {
		t.Errorf("Expected 80*0.5 + 10*0.5 = 45, got %v", res.Score)
	}
}

func TestAggregate_MaximaBounded(t *testing.T) {
	fc := &fakeClassifier{scores: map[string]model.EntailmentScores{
		"x": {Entailment: 1.7, Contradiction: -0.2, Neutral: math.NaN()},
	}}

	res, _ := NewAggregator(model.DefaultScoreConfig(), fc, nil).Aggregate(context.Background(), "claim",
		[]model.Evidence{ev("1", "a")}, []chunk.Candidate{cand("1", "a", "x")})

	src := res.Sources["1"]
	for name, v := range map[string]float64{"e": src.MaxEntail, "c": src.MaxContra, "n": src.MaxNeutral} {
		if v < 0 || v > 1 {
			t.Errorf("Expected %s in [0,1], got %v", name, v)
		}
	}
	if res.Score < 0 || res.Score > 100 {
		t.Errorf("Expected NLI score in [0,100], got %v", res.Score)
	}
}
