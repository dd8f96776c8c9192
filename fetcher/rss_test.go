package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelalavelle/stagnesofassisi/config"
	"github.com/michaelalavelle/stagnesofassisi/fetcher/types"
	"github.com/michaelalavelle/stagnesofassisi/parser"
)

const testRSSFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>St. Agnes of Assisi</title>
    <link>https://stagnesofassisiofs.wordpress.com</link>
    <description>Parish news</description>
    <item>
      <title>Parish Council Minutes</title>
      <link>https://stagnesofassisiofs.wordpress.com/2024/03/09/minutes/</link>
      <category><![CDATA[Parish News]]></category>
      <description>Minutes summary</description>
      <content:encoded><![CDATA[<p>Read the <a href="https://x/minutes.pdf">minutes</a>.</p>]]></content:encoded>
      <enclosure url="https://x/minutes.pdf" length="1536" type="application/pdf"/>
      <pubDate>Sat, 09 Mar 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Youth Retreat</title>
      <category>Youth</category>
      <description>Retreat details</description>
      <pubDate>Fri, 08 Mar 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title> </title>
      <category>parish-news</category>
      <description><![CDATA[<div class="wp-block-file"><a href="https://x/flyer.png">Flyer</a></div>]]></description>
    </item>
  </channel>
</rss>`

func setupRSSServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		fmt.Fprint(w, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetcher_FiltersByCategory(t *testing.T) {
	srv := setupRSSServer(t, http.StatusOK, testRSSFeed)
	f, err := NewRSSFetcher(srv.URL, nil, parser.Attachments)
	require.NoError(t, err)

	before := time.Now()
	items := f.FetchPostsByCategory(context.Background(), "Parish-News", 10)
	require.Len(t, items, 2)

	assert.Equal(t, types.RSS, items[0].Source)
	assert.Equal(t, "Parish Council Minutes", items[0].Title)
	assert.Equal(t, time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC), items[0].Date.UTC())
	assert.Equal(t, `<p>Read the <a href="https://x/minutes.pdf" target="_blank" rel="noreferrer">minutes</a>.</p>`, items[0].HTML)

	assert.Equal(t, DefaultTitle, items[1].Title)
	assert.WithinDuration(t, before, items[1].Date, 5*time.Second)
	assert.Equal(t, `<p><a href="https://x/flyer.png" target="_blank" rel="noreferrer">Flyer (PNG)</a></p>`, items[1].HTML)

	youth := f.FetchPostsByCategory(context.Background(), "youth", 10)
	require.Len(t, youth, 1)
	assert.Equal(t, "Youth Retreat", youth[0].Title)

	assert.Len(t, f.FetchPostsByCategory(context.Background(), "parish-news", 1), 1)
	assert.Empty(t, f.FetchPostsByCategory(context.Background(), "parish-news", 0))
}

const testRSSEnclosures = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>St. Agnes of Assisi</title>
    <item>
      <title>Council Minutes</title>
      <category>News</category>
      <description><![CDATA[<div class="wp-block-file"><a href="https://x/m.pdf">Minutes</a></div>]]></description>
      <enclosure url="https://x/m.pdf" length="2097152" type="application/pdf"/>
    </item>
    <item>
      <title>Budget</title>
      <category>News</category>
      <description><![CDATA[<div class="wp-block-file"><a href="https://x/budget.pdf">Budget</a></div>]]></description>
      <enclosure url="https://x/budget.pdf" length="unknown" type="application/pdf"/>
    </item>
  </channel>
</rss>`

func TestRSSFetcher_EnclosuresAsAttachments(t *testing.T) {
	srv := setupRSSServer(t, http.StatusOK, testRSSEnclosures)
	f, err := NewRSSFetcher(srv.URL, nil, parser.Attachments)
	require.NoError(t, err)

	items := f.FetchPostsByCategory(context.Background(), "news", 5)
	require.Len(t, items, 2)
	assert.Equal(t, `<p><a href="https://x/m.pdf" target="_blank" rel="noreferrer">Minutes (PDF, 2.0 MB)</a></p>`, items[0].HTML)
	assert.Equal(t, `<p><a href="https://x/budget.pdf" target="_blank" rel="noreferrer">Budget (PDF)</a></p>`, items[1].HTML)
}

func TestRSSFetcher_Failures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := setupRSSServer(t, http.StatusInternalServerError, testRSSFeed)
		f, err := NewRSSFetcher(srv.URL, nil, parser.Content)
		require.NoError(t, err)
		assert.Empty(t, f.FetchPostsByCategory(context.Background(), "youth", 10))
	})

	t.Run("not a feed", func(t *testing.T) {
		srv := setupRSSServer(t, http.StatusOK, "not xml")
		f, err := NewRSSFetcher(srv.URL, nil, parser.Content)
		require.NoError(t, err)
		assert.Empty(t, f.FetchPostsByCategory(context.Background(), "youth", 10))
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "parish-news", slugify("Parish News"))
	assert.Equal(t, "mass-times-2024", slugify("  Mass Times -- 2024! "))
	assert.Equal(t, "", slugify("!!"))
}

func TestNew(t *testing.T) {
	f, err := New(config.FeedConfig{T: config.WordPress}, nil)
	require.NoError(t, err)
	assert.IsType(t, &WordPressFetcher{}, f)

	f, err = New(config.FeedConfig{T: config.RSS, FeedURL: "https://x/feed/"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RSSFetcher{}, f)

	_, err = New(config.FeedConfig{T: config.RSS}, nil)
	assert.Error(t, err)

	_, err = New(config.FeedConfig{T: "telegram"}, nil)
	assert.Error(t, err)

	_, err = New(config.FeedConfig{T: config.WordPress, ParserT: "bogus"}, nil)
	assert.Error(t, err)
}
