package parser

import (
	"regexp"
)

var (
	objectRe = regexp.MustCompile(`(?i)<object[\s\S]*?</object>`)
	anchorRe = regexp.MustCompile(`(?i)<a\s+([^>]*href=["'][^"']+["'][^>]*)>`)
	targetRe = regexp.MustCompile(`(?i)\btarget=`)
	relRe    = regexp.MustCompile(`(?i)\brel=`)
)

// StripObjects removes every <object>...</object> block
func StripObjects(html string) string {
	return objectRe.ReplaceAllString(html, "")
}

// ExternalLinks adds target="_blank" and rel="noreferrer" to anchors with an href
// that lack them. Attributes already present are left alone, so the rewrite is idempotent.
func ExternalLinks(html string) string {
	return replaceAllSubmatchFunc(anchorRe, html, func(groups []string) string {
		attrs := groups[1]
		if !targetRe.MatchString(attrs) {
			attrs += ` target="_blank"`
		}
		if !relRe.MatchString(attrs) {
			attrs += ` rel="noreferrer"`
		}
		return "<a " + attrs + ">"
	})
}

// replaceAllSubmatchFunc is ReplaceAllStringFunc with access to capture groups.
// Groups that did not participate are passed as "".
func replaceAllSubmatchFunc(re *regexp.Regexp, src string, repl func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	var out []byte
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = src[m[2*i]:m[2*i+1]]
			}
		}
		out = append(out, src[last:m[0]]...)
		out = append(out, repl(groups)...)
		last = m[1]
	}
	out = append(out, src[last:]...)
	return string(out)
}
