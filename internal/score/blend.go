package score

import (
	"fmt"
	"math"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// Blend mixes the heuristic and NLI scores: (1-alpha)*heuristic + alpha*nli, clamped to [0,100]
func Blend(heuristic, nliScore, alpha float64) float64 {
	if math.IsNaN(heuristic) {
		heuristic = 0
	}
	if math.IsNaN(nliScore) {
		nliScore = 0
	}
	if math.IsNaN(alpha) {
		alpha = 0
	}
	return Clamp((1-alpha)*heuristic+alpha*nliScore, 0, 100)
}

// BlendSignal describes the final mix
func BlendSignal(heuristic, nliScore, alpha, final float64) model.Signal {
	return model.Signal{
		Type:        model.SignalBlend,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Final %.1f = %.2f*heuristic %.1f + %.2f*nli %.1f", final, 1-alpha, heuristic, alpha, nliScore),
		Data: map[string]any{
			"heuristic": Finite(heuristic),
			"nli":       Finite(nliScore),
			"alpha":     Finite(alpha),
			"final":     Finite(final),
			"formula":   "clamp((1 - FINAL_BLEND_ALPHA)*heuristic + FINAL_BLEND_ALPHA*nli, 0, 100)",
		},
	}
}
