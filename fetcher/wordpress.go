package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/michaelalavelle/stagnesofassisi/fetcher/types"
	"github.com/michaelalavelle/stagnesofassisi/parser"
)

// DefaultWordPressPostsURL is the parish blog's public REST listing
const DefaultWordPressPostsURL = "https://public-api.wordpress.com/rest/v1.1/sites/stagnesofassisiofs.wordpress.com/posts/?number=50&fields=title,date,content,categories,attachments"

const userAgent = "stagnesofassisi-site/1.0"

// WordPressFetcher reads posts from a WordPress.com REST v1.1 posts endpoint
type WordPressFetcher struct {
	url     string
	client  *http.Client
	parserT parser.Type
	parser  parser.Parser
	now     func() time.Time
}

// NewWordPressFetcher creates a fetcher for url. An empty url selects
// DefaultWordPressPostsURL and a nil client selects http.DefaultClient.
func NewWordPressFetcher(url string, client *http.Client, parserT parser.Type) (*WordPressFetcher, error) {
	p, err := parser.New(parserT)
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = DefaultWordPressPostsURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &WordPressFetcher{
		url:     url,
		client:  client,
		parserT: parserT,
		parser:  p,
		now:     time.Now,
	}, nil
}

// FetchPostsByCategory returns at most limit posts tagged with categorySlug.
// Transport, status and decoding failures all yield an empty result.
func (f *WordPressFetcher) FetchPostsByCategory(ctx context.Context, categorySlug string, limit int) []types.FeedItem {
	posts, err := f.fetchPosts(ctx)
	if err != nil {
		slog.Warn("wordpress fetch failed", "url", f.url, "error", err)
		return nil
	}

	category := strings.ToLower(categorySlug)
	now := f.now()

	var items []types.FeedItem
	for _, post := range posts {
		if len(items) >= limit {
			break
		}

		if !post.IsObject() {
			slog.Debug("skipping malformed wordpress post")
			continue
		}
		if !hasCategory(post.Get("categories"), category) {
			continue
		}

		items = append(items, types.FeedItem{
			Source: types.WordPress,
			Title:  postTitle(post.Get("title")),
			Date:   postDate(post.Get("date"), now),
			HTML:   f.postHTML(post),
		})
	}

	slog.Debug("wordpress posts fetched", "category", category, "total", len(posts), "kept", len(items))
	return items
}

func (f *WordPressFetcher) fetchPosts(ctx context.Context) ([]gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request with %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body with %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	payload := gjson.ParseBytes(body)
	if !payload.IsObject() {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	posts := payload.Get("posts")
	if !posts.IsArray() {
		if posts.Exists() && posts.Type != gjson.Null {
			slog.Debug("wordpress posts field is not an array", "url", f.url)
		}
		return nil, nil
	}
	return posts.Array(), nil
}

func (f *WordPressFetcher) postHTML(post gjson.Result) string {
	body, _ := str(post.Get(parser.BodyField(f.parserT)))
	if f.parserT == parser.Excerpt {
		return f.parser.Parse(parser.Post{Excerpt: body})
	}
	return f.parser.Parse(parser.Post{
		Content:     body,
		Attachments: postAttachments(post.Get("attachments")),
	})
}

// hasCategory reports whether any category value carries slug, compared lower-cased
func hasCategory(categories gjson.Result, slug string) bool {
	found := false
	members(categories, func(v gjson.Result) {
		if found || !v.IsObject() {
			return
		}
		s, ok := str(v.Get("slug"))
		if ok && s != "" && strings.ToLower(s) == slug {
			found = true
		}
	})
	return found
}

func postTitle(r gjson.Result) string {
	if s, ok := str(r); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return DefaultTitle
	}
	if r.IsObject() {
		if rendered, ok := str(r.Get("rendered")); ok {
			if rendered = strings.TrimSpace(rendered); rendered != "" {
				return rendered
			}
		}
	}
	return DefaultTitle
}

// postDate falls back to now for a missing date. Present but unparseable values
// become the zero time; numbers are Unix milliseconds.
func postDate(r gjson.Result, now time.Time) time.Time {
	switch r.Type {
	case gjson.Null:
		return now
	case gjson.String:
		return parseDate(r.Str)
	case gjson.Number:
		return unixMillis(r.Num)
	}
	return time.Time{}
}

func postAttachments(r gjson.Result) []parser.Attachment {
	var attachments []parser.Attachment
	members(r, func(v gjson.Result) {
		if !v.IsObject() {
			return
		}
		u, _ := str(v.Get("URL"))
		ext, _ := str(v.Get("extension"))
		attachments = append(attachments, parser.Attachment{
			URL:       u,
			Extension: ext,
			Filesize:  number(v.Get("filesize")),
		})
	})
	return attachments
}
