package chunk

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeywords caps how many claim keywords are extracted
const MaxKeywords = 10

// stopWords covers the high-frequency function words of the supported scripts
var stopWords = map[string]bool{
	// Hebrew
	"של": true, "על": true, "עם": true, "אם": true, "את": true, "זה": true, "זו": true,
	// English
	"that": true, "the": true, "and": true, "or": true, "is": true, "are": true,
}

// Keywords extracts up to MaxKeywords distinct lower-cased claim keywords,
// most frequent first. Equal frequencies keep first-occurrence order.
func Keywords(claim string) []string {
	counts := make(map[string]int)
	var order []string

	for _, tok := range tokenize(strings.ToLower(claim)) {
		if utf8.RuneCountInString(tok) <= 1 || stopWords[tok] {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// Hits counts the distinct keywords that occur in text as case-insensitive substrings
func Hits(text string, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// Relevance is the fraction of keywords found in text, in [0,1]
func Relevance(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	return float64(Hits(text, keywords)) / float64(len(keywords))
}

// tokenize returns maximal runs of letters (with combining marks) in any script
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
}
