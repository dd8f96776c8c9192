package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// PlainText extracts the visible text of an HTML fragment with whitespace collapsed
func PlainText(html string) string {
	if !strings.Contains(html, "<") {
		return strings.Join(strings.Fields(html), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, object, iframe").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Paragraphs returns the non-empty text of each block element. Fragments without
// block markup are split on newlines.
func Paragraphs(html string) []string {
	var blocks []string
	if strings.Contains(html, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			doc.Find("p, li, blockquote, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
				if text := strings.TrimSpace(s.Text()); text != "" {
					blocks = append(blocks, text)
				}
			})
		}
		if len(blocks) > 0 {
			return blocks
		}
	}

	for _, line := range strings.Split(html, "\n") {
		if text := strings.TrimSpace(line); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks
}

// Teaser is the plain text of html cut to maxLen characters
func Teaser(html string, maxLen int) string {
	text := PlainText(html)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxLen])) + "..."
}
