package parser

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
)

const mebibyte = 1024 * 1024

var fileBlockRe = regexp.MustCompile(`(?i)<div[^>]*class=["'][^"']*wp-block-file[^"']*["'][^>]*>[\s\S]*?<a[^>]*href=["']([^"']+)["'][^>]*>([\s\S]*?)</a>[\s\S]*?</div>`)

// RewriteFileBlocks replaces each wp-block-file container with a single paragraph
// holding one download link labelled with the file type and size.
func RewriteFileBlocks(html string, attachments []Attachment) string {
	return replaceAllSubmatchFunc(fileBlockRe, html, func(groups []string) string {
		href, label := groups[1], groups[2]

		var match *Attachment
		for i := range attachments {
			if attachments[i].URL == href {
				match = &attachments[i]
				break
			}
		}

		var extension, size string
		if match != nil {
			extension = FileExtension(href, match.Extension)
			size = FormatBytes(match.Filesize)
		} else {
			extension = FileExtension(href, "")
		}

		descriptor := fmt.Sprintf(" (%s)", extension)
		if size != "" {
			descriptor = fmt.Sprintf(" (%s, %s)", extension, size)
		}
		return fmt.Sprintf(`<p><a href="%s" target="_blank" rel="noreferrer">%s%s</a></p>`, href, label, descriptor)
	})
}

// FileExtension prefers the explicit extension, then the suffix of the last
// path segment of rawURL. Falls back to "FILE".
func FileExtension(rawURL, explicit string) string {
	if explicit != "" {
		return strings.ToUpper(explicit)
	}

	clean, _, _ := strings.Cut(rawURL, "?")
	p := clean
	if u, err := url.Parse(clean); err == nil {
		p = u.Path
	}
	segment := p[strings.LastIndex(p, "/")+1:]

	dot := strings.LastIndex(segment, ".")
	if dot < 0 || dot == len(segment)-1 {
		return "FILE"
	}
	return strings.ToUpper(segment[dot+1:])
}

// FormatBytes renders a byte count as "X.X MB" from 1 MiB up and "N KB" below.
// Unknown sizes render as "".
func FormatBytes(bytes float64) string {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes <= 0 {
		return ""
	}
	if bytes >= mebibyte {
		return fmt.Sprintf("%.1f MB", roundHalfUp(bytes/mebibyte*10)/10)
	}
	return fmt.Sprintf("%d KB", int64(roundHalfUp(bytes/1024)))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
