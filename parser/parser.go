package parser

import (
	"fmt"
)

type Type = string

var (
	Excerpt     = Type("excerpt")
	Content     = Type("content")
	Attachments = Type("attachments")
)

// Attachment is a downloadable file referenced from a post body
type Attachment struct {
	URL       string
	Extension string
	Filesize  float64 // NaN, Inf or <= 0 means unknown
}

// Post carries the body fields a Parser may read
type Post struct {
	Content     string
	Excerpt     string
	Attachments []Attachment
}

// Parser turns a post body into the HTML shown on the site
type Parser interface {
	Parse(post Post) string
}

// New returns the body policy for t. An empty type selects Attachments.
func New(t Type) (Parser, error) {
	switch t {
	case Excerpt:
		return ExcerptParser{}, nil
	case Content:
		return ContentParser{}, nil
	case Attachments, "":
		return AttachmentParser{}, nil
	default:
		return nil, fmt.Errorf("unknown parser type: %s", t)
	}
}

// BodyField is the WordPress post field the policy reads its body from
func BodyField(t Type) string {
	if t == Excerpt {
		return "excerpt"
	}
	return "content"
}

// ExcerptParser returns the excerpt untouched
type ExcerptParser struct{}

func (ExcerptParser) Parse(post Post) string {
	return post.Excerpt
}

// ContentParser drops embedded objects and opens outbound links in a new window
type ContentParser struct{}

func (ContentParser) Parse(post Post) string {
	return ExternalLinks(StripObjects(post.Content))
}

// AttachmentParser is ContentParser plus rewriting of file blocks into plain download links
type AttachmentParser struct{}

func (AttachmentParser) Parse(post Post) string {
	html := StripObjects(post.Content)
	html = RewriteFileBlocks(html, post.Attachments)
	return ExternalLinks(html)
}
