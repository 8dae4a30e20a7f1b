// Package chunk splits page text into claim-relevant passages and decides
// which passages are lexically on-topic enough to be worth an NLI call.
package chunk

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxChars is the maximum passage length in characters
const MaxChars = 500

// Split breaks text into sentence-bounded passages of at most maxChars characters.
// Sentences are merged greedily and never split across passages, except a
// single sentence longer than maxChars which is wrapped at word boundaries.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = MaxChars
	}

	var chunks []string
	var buf strings.Builder
	bufLen := 0

	for _, sentence := range splitSentences(text) {
		for _, piece := range wrap(sentence, maxChars) {
			n := utf8.RuneCountInString(piece)
			switch {
			case bufLen == 0:
				buf.WriteString(piece)
				bufLen = n
			case bufLen+1+n <= maxChars:
				buf.WriteByte(' ')
				buf.WriteString(piece)
				bufLen += 1 + n
			default:
				chunks = append(chunks, buf.String())
				buf.Reset()
				buf.WriteString(piece)
				bufLen = n
			}
		}
	}

	if bufLen > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// Select returns up to topN passages of text ranked by claim keyword hits.
// Ties keep textual order. When no passage mentions any keyword the first
// topN passages are returned in textual order instead.
func Select(text, claim string, topN int) []string {
	return SelectWithKeywords(text, Keywords(claim), topN)
}

// SelectWithKeywords is Select with precomputed claim keywords
func SelectWithKeywords(text string, keywords []string, topN int) []string {
	if topN <= 0 {
		return []string{}
	}

	chunks := Split(text, MaxChars)
	if len(chunks) == 0 {
		return []string{}
	}

	type scored struct {
		text string
		hits int
	}
	ranked := make([]scored, len(chunks))
	for i, c := range chunks {
		ranked[i] = scored{text: c, hits: Hits(c, keywords)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].hits > ranked[j].hits
	})

	selected := make([]string, 0, topN)
	for _, r := range ranked {
		if r.hits == 0 || len(selected) == topN {
			break
		}
		selected = append(selected, r.text)
	}
	if len(selected) > 0 {
		return selected
	}

	if len(chunks) > topN {
		chunks = chunks[:topN]
	}
	return chunks
}

// splitSentences splits on sentence terminators followed by whitespace and on line breaks
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

// wrap hard-wraps an oversized sentence at word boundaries
func wrap(sentence string, maxChars int) []string {
	if utf8.RuneCountInString(sentence) <= maxChars {
		return []string{sentence}
	}

	var pieces []string
	var line []rune
	for _, word := range strings.Fields(sentence) {
		w := []rune(word)
		for len(w) > maxChars {
			if len(line) > 0 {
				pieces = append(pieces, string(line))
				line = line[:0]
			}
			pieces = append(pieces, string(w[:maxChars]))
			w = w[maxChars:]
		}
		switch {
		case len(w) == 0:
		case len(line) == 0:
			line = append(line, w...)
		case len(line)+1+len(w) <= maxChars:
			line = append(line, ' ')
			line = append(line, w...)
		default:
			pieces = append(pieces, string(line))
			line = append(line[:0], w...)
		}
	}
	if len(line) > 0 {
		pieces = append(pieces, string(line))
	}
	return pieces
}
