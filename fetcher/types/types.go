package types

import (
	"context"
	"time"
)

type Source = string

var (
	WordPress = Source("wordpress")
	RSS       = Source("rss")
)

// FeedItem is a normalized post ready for rendering.
// Date is the zero time when the source carried an unparseable date.
type FeedItem struct {
	Source Source
	Title  string
	Date   time.Time
	HTML   string
}

// FeedFetcher returns posts of one category, newest first as the source orders them.
// Implementations never fail: any problem yields an empty slice.
type FeedFetcher interface {
	FetchPostsByCategory(ctx context.Context, categorySlug string, limit int) []FeedItem
}
