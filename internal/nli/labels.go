package nli

import "strings"

// Canonical class labels
const (
	LabelEntailment    = "entailment"
	LabelContradiction = "contradiction"
	LabelNeutral       = "neutral"
)

// labelPrefixes are stripped from model labels before matching
var labelPrefixes = []string{"mnli_", "xnli_", "mnli-", "xnli-"}

// NormalizeLabel maps a model's label (ENTAILMENT, mnli_entailment, ...) to a canonical label
func NormalizeLabel(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, p := range labelPrefixes {
		l = strings.TrimPrefix(l, p)
	}

	switch l {
	case LabelEntailment, "entails", "entailed":
		return LabelEntailment, true
	case LabelContradiction, "contradicts", "contradict":
		return LabelContradiction, true
	case LabelNeutral:
		return LabelNeutral, true
	}
	return "", false
}

// hasAllLabels reports whether the labels cover all three classes
func hasAllLabels(labels []string) bool {
	seen := make(map[string]bool, 3)
	for _, l := range labels {
		if name, ok := NormalizeLabel(l); ok {
			seen[name] = true
		}
	}
	return len(seen) == 3
}
