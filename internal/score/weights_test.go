package score

import (
	"math"
	"testing"
	"time"

	"github.com/lihivismel/Fact-Check/internal/model"
)

func TestDomainWeight_Precedence(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	cfg.DomainWeights = map[string]float64{"news.gov.il": 1.4}
	cfg.SuffixDefaults = map[string]float64{".gov.il": 1.3, ".il": 1.05}

	tests := []struct {
		domain string
		want   float64
	}{
		{"news.gov.il", 1.4},     // exact wins over suffix
		{"NEWS.gov.il:443", 1.4}, // normalised before lookup
		{"health.gov.il", 1.3},   // longest suffix wins
		{"ynet.co.il", 1.05},
		{"example.com", 1.0},
		{"", 1.0},
	}

	for _, tt := range tests {
		if got := DomainWeight(cfg, tt.domain); got != tt.want {
			t.Errorf("DomainWeight(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestDomainBonus_DefaultsToOne(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	cfg.DomainWeights = map[string]float64{"reuters.com": 1.3}
	cfg.BonusDomains = map[string]float64{"who.int": 2.0}

	if got := DomainBonus(cfg, "who.int"); got != 2.0 {
		t.Errorf("Expected configured bonus 2.0, got %v", got)
	}
	if got := DomainBonus(cfg, "reuters.com"); got != 1.0 {
		t.Errorf("Expected unlisted domain to get 1.0 regardless of weight, got %v", got)
	}
	if got := DomainBonus(cfg, "blog.example"); got != 1.0 {
		t.Errorf("Expected neutral bonus 1.0, got %v", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-05", "2024-03-05", true},
		{"2024-03-05T10:20:30Z", "2024-03-05", true},
		{"2024-03-05T10:20:30.123+02:00", "2024-03-05", true},
		{"2024-03-05T10:20:30+0200", "2024-03-05", true},
		{"2024-03-05T10:20:30", "2024-03-05", true},
		{"2024/03/05", "2024-03-05", true},
		{"05/03/2024", "2024-03-05", true},
		{"March 5, 2024", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestRecencyWeight_Monotonic(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	ages := []int{-5, 0, 10, 90, 91, 200, 365, 1000, 1095, 3000, 3650, 5000}
	prev := math.Inf(1)
	for _, days := range ages {
		published := now.AddDate(0, 0, -days).Format("2006-01-02")
		w := RecencyWeight(cfg, published, now)
		if w > prev {
			t.Errorf("Recency weight increased with age: %d days -> %v (previous %v)", days, w, prev)
		}
		prev = w
	}

	if got := RecencyWeight(cfg, now.AddDate(0, 0, -10).Format("2006-01-02"), now); got != 1.15 {
		t.Errorf("Expected freshest bucket 1.15, got %v", got)
	}
	if got := RecencyWeight(cfg, now.AddDate(-20, 0, 0).Format("2006-01-02"), now); got != 0.95 {
		t.Errorf("Expected last bucket weight 0.95 for very old pages, got %v", got)
	}
}

func TestRecencyWeight_Neutral(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	now := time.Now()

	if got := RecencyWeight(cfg, "", now); got != 1.0 {
		t.Errorf("Missing date: got %v, want 1.0", got)
	}
	if got := RecencyWeight(cfg, "yesterday-ish", now); got != 1.0 {
		t.Errorf("Unparseable date: got %v, want 1.0", got)
	}

	cfg.RecencyBuckets = nil
	if got := RecencyWeight(cfg, "2020-01-01", now); got != 1.0 {
		t.Errorf("No buckets: got %v, want 1.0", got)
	}
}

func TestCoverageFactor_Bucketed(t *testing.T) {
	cfg := model.DefaultScoreConfig()

	tests := []struct {
		domains int
		factor  float64
		bucket  string
	}{
		{0, 0.5, "low"},
		{3, 0.5, "low"},
		{4, 1.0, "mid"},
		{8, 1.0, "mid"},
		{9, 1.1, "high"},
	}

	for _, tt := range tests {
		f, b := CoverageFactor(cfg, tt.domains)
		if f != tt.factor || b != tt.bucket {
			t.Errorf("CoverageFactor(%d) = %v/%s, want %v/%s", tt.domains, f, b, tt.factor, tt.bucket)
		}
	}
}

func TestCoverageFactor_Monotonic(t *testing.T) {
	for _, mode := range []string{model.CoverageBucketed, model.CoverageLinear} {
		cfg := model.DefaultScoreConfig()
		cfg.CoverageMode = mode

		prev := math.Inf(-1)
		for d := 0; d <= 20; d++ {
			f, _ := CoverageFactor(cfg, d)
			if f < prev {
				t.Errorf("%s: factor decreased at %d domains (%v < %v)", mode, d, f, prev)
			}
			prev = f
		}
	}
}

func TestCoverageFactor_Linear(t *testing.T) {
	cfg := model.DefaultScoreConfig()
	cfg.CoverageMode = model.CoverageLinear

	if f, b := CoverageFactor(cfg, 0); f != 0.6 || b != "linear" {
		t.Errorf("Expected min factor 0.6/linear at 0 domains, got %v/%s", f, b)
	}
	if f, _ := CoverageFactor(cfg, 5); math.Abs(f-0.8) > 1e-9 {
		t.Errorf("Expected 0.8 at half target, got %v", f)
	}
	if f, _ := CoverageFactor(cfg, 50); f != 1.0 {
		t.Errorf("Expected max factor 1.0 past target, got %v", f)
	}

	for _, target := range []int{0, -3} {
		cfg.CoverageTargetDomains = target
		if f, _ := CoverageFactor(cfg, 0); f != 0.6 {
			t.Errorf("Expected min factor 0.6 with target %d and no domains, got %v", target, f)
		}
		if f, _ := CoverageFactor(cfg, 7); f != 0.6 {
			t.Errorf("Expected min factor 0.6 with target %d, got %v", target, f)
		}
	}
}

func TestFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := Finite(v); got != 0 {
			t.Errorf("Finite(%v) = %v, want 0", v, got)
		}
	}
	if got := Finite(-12.5); got != -12.5 {
		t.Errorf("Finite(-12.5) = %v, want -12.5", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(math.NaN(), 0, 100) != 0 {
		t.Error("Expected NaN to clamp to lower bound")
	}
	if Clamp(-5, 0, 100) != 0 || Clamp(150, 0, 100) != 100 || Clamp(42, 0, 100) != 42 {
		t.Error("Clamp bounds are wrong")
	}
}
