package fetcher

import (
	"fmt"
	"net/http"

	"github.com/michaelalavelle/stagnesofassisi/config"
	"github.com/michaelalavelle/stagnesofassisi/fetcher/types"
)

// New creates the fetcher matching the feed's source type
func New(feed config.FeedConfig, client *http.Client) (types.FeedFetcher, error) {
	switch feed.T {
	case config.WordPress, "":
		f, err := NewWordPressFetcher(feed.FeedURL, client, feed.ParserT)
		if err != nil {
			return nil, err
		}
		return f, nil
	case config.RSS:
		if feed.FeedURL == "" {
			return nil, fmt.Errorf("rss feed for category '%s' has no feed_url", feed.Category)
		}
		f, err := NewRSSFetcher(feed.FeedURL, client, feed.ParserT)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown feed type: %s", feed.T)
	}
}
