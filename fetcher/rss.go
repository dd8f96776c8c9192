package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"

	"github.com/michaelalavelle/stagnesofassisi/fetcher/types"
	"github.com/michaelalavelle/stagnesofassisi/parser"
)

// RSSFetcher reads RSS and Atom feeds using gofeed, e.g. a WordPress site's /feed/
type RSSFetcher struct {
	url     string
	feeds   *gofeed.Parser
	parserT parser.Type
	parser  parser.Parser
	now     func() time.Time
}

// NewRSSFetcher creates a new RSS fetcher for url
func NewRSSFetcher(url string, client *http.Client, parserT parser.Type) (*RSSFetcher, error) {
	p, err := parser.New(parserT)
	if err != nil {
		return nil, err
	}
	feeds := gofeed.NewParser()
	feeds.UserAgent = userAgent
	if client != nil {
		feeds.Client = client
	}
	return &RSSFetcher{
		url:     url,
		feeds:   feeds,
		parserT: parserT,
		parser:  p,
		now:     time.Now,
	}, nil
}

// FetchPostsByCategory returns at most limit feed entries filed under categorySlug.
// Category names match either lower-cased or slugified.
func (f *RSSFetcher) FetchPostsByCategory(ctx context.Context, categorySlug string, limit int) []types.FeedItem {
	feed, err := f.feeds.ParseURLWithContext(f.url, ctx)
	if err != nil {
		slog.Warn("rss fetch failed", "url", f.url, "error", err)
		return nil
	}

	category := strings.ToLower(categorySlug)
	now := f.now()

	var items []types.FeedItem
	for _, item := range feed.Items {
		if len(items) >= limit {
			break
		}
		if item == nil || !hasFeedCategory(item.Categories, category) {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = DefaultTitle
		}

		// Parse published date if available
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		} else if item.Published != "" {
			published = parseDate(item.Published)
		}

		items = append(items, types.FeedItem{
			Source: types.RSS,
			Title:  title,
			Date:   published,
			HTML:   f.itemHTML(item),
		})
	}

	slog.Debug("rss items fetched", "category", category, "total", len(feed.Items), "kept", len(items))
	return items
}

func (f *RSSFetcher) itemHTML(item *gofeed.Item) string {
	if f.parserT == parser.Excerpt {
		return f.parser.Parse(parser.Post{Excerpt: item.Description})
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}
	attachments := make([]parser.Attachment, 0, len(item.Enclosures))
	for _, enc := range item.Enclosures {
		if enc == nil {
			continue
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(enc.Length), 64)
		if err != nil {
			size = 0
		}
		attachments = append(attachments, parser.Attachment{URL: enc.URL, Filesize: size})
	}
	return f.parser.Parse(parser.Post{Content: body, Attachments: attachments})
}

func hasFeedCategory(categories []string, slug string) bool {
	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		if name == slug || slugify(name) == slug {
			return true
		}
	}
	return false
}

// slugify lower-cases s and joins runs of letters and digits with hyphens
func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
