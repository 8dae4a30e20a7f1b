package scrape

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/abadojack/whatlanggo"
	"golang.org/x/net/html"
)

// publishedSelectors are tried in order; the first non-empty value wins
var publishedSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[property="og:updated_time"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`meta[property="article:modified_time"]`, "content"},
	{`meta[name="DC.date.issued"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// landmarks are content containers considered before falling back to <body>
const landmarks = `article, main, [role="main"]`

// Document is the extracted content of one HTML page
type Document struct {
	Title       string
	PublishedAt string
	Text        string
}

// Extract pulls the title, publish date and readable text out of a parsed page
func Extract(doc *goquery.Document, minChars int) Document {
	return Document{
		Title:       extractTitle(doc),
		PublishedAt: extractPublished(doc),
		Text:        extractReadableText(doc, minChars),
	}
}

// extractTitle uses <title>, overridden by a non-empty og:title
func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if og, exists := doc.Find(`meta[property="og:title"]`).First().Attr("content"); exists {
		if og = strings.TrimSpace(og); og != "" {
			title = og
		}
	}
	return collapseSpace(title)
}

func extractPublished(doc *goquery.Document) string {
	for _, c := range publishedSelectors {
		var found string
		doc.Find(c.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr(c.attr); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// extractReadableText returns the text of the densest content landmark.
// When no landmark carries at least minChars, the whole body is used.
func extractReadableText(doc *goquery.Document, minChars int) string {
	best := ""
	bestLen := 0
	doc.Find(landmarks).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			text := visibleText(n)
			if l := utf8.RuneCountInString(text); l > bestLen {
				best, bestLen = text, l
			}
		}
	})
	if bestLen >= minChars && bestLen > 0 {
		return best
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return collapseSpace(doc.Text())
	}
	return visibleText(body.Nodes[0])
}

// skipped elements never contribute readable text
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"aside":    true,
	"form":     true,
	"button":   true,
	"template": true,
}

var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
	"i": true, "mark": true, "q": true, "s": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

// visibleText walks a node tree collecting text with collapsed whitespace
func visibleText(root *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipped[n.Data] || hidden(n) {
				return
			}
			if !inline[n.Data] {
				buf.WriteByte(' ')
			}
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && !inline[n.Data] {
			buf.WriteByte(' ')
		}
	}

	walk(root)
	return collapseSpace(buf.String())
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DetectLanguage returns the ISO 639-1 code of text, or "" when detection is unreliable
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
