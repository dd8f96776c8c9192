package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/michaelalavelle/stagnesofassisi/parser"
)

type SourceType = string

var (
	WordPress = SourceType("wordpress")
	RSS       = SourceType("rss")
)

type Order = string

var (
	Newest = Order("desc")
	Oldest = Order("asc")
)

const baseCfgPath = "stagnesofassisi/config.toml"

type Config struct {
	Site            SiteConfig        `toml:"site"`
	ContentDir      string            `toml:"content_dir"`
	OutputDirectory string            `toml:"output_directory"`
	HomeLimit       int               `toml:"home_limit"` // Entries per section on the home page
	Sections        []SectionConfig   `toml:"sections"`
	Filters         map[string]Filter `toml:"filters"` // Named filters that can be referenced by feeds
	Bulletin        BulletinConfig    `toml:"bulletin"`
}

type SiteConfig struct {
	Title string `toml:"title"`
	URL   string `toml:"url"`
	Base  string `toml:"base"` // Path prefix the site is served under, e.g. "/stagnesofassisi"
}

// SectionConfig is one page of the site, merging a local collection with remote feeds
type SectionConfig struct {
	Name       string       `toml:"name"`
	Title      string       `toml:"title"`
	Collection string       `toml:"collection"` // Local content collection, empty for feed-only sections
	Order      Order        `toml:"order"`
	Limit      int          `toml:"limit"` // 0 = no limit
	Feeds      []FeedConfig `toml:"feeds"`
	Enabled    *bool        `toml:"enabled"`
}

type FeedConfig struct {
	T           SourceType  `toml:"type"`
	FeedURL     string      `toml:"feed_url"` // Empty selects the default endpoint for the type
	Category    string      `toml:"category"`
	Limit       int         `toml:"limit"`
	ParserT     parser.Type `toml:"parser"`
	FilterNames []string    `toml:"filters"` // Names of filters to apply (pipeline)
	Enabled     *bool       `toml:"enabled"`
}

// Filter defines rules for filtering feed items
type Filter struct {
	MinLength         int      `toml:"min_length"`         // Minimum character count (0 = no limit)
	MinWords          int      `toml:"min_words"`          // Minimum word count (0 = no limit)
	ExcludePatterns   []string `toml:"exclude_patterns"`   // Regex patterns to exclude
	RequireParagraphs bool     `toml:"require_paragraphs"` // Must have multiple lines/paragraphs
}

// BulletinConfig controls the printed bulletin. Empty page sizes fall back to B5 with 15mm margins.
type BulletinConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Width   string `toml:"width"`  // CSS length, e.g. "176mm"
	Height  string `toml:"height"` // CSS length, e.g. "250mm"
	Margin  string `toml:"margin"` // Applied to all four sides
}

// IsEnabled returns true if the section is enabled (defaults to true if not explicitly set)
func (s SectionConfig) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// IsEnabled returns true if the feed is enabled (defaults to true if not explicitly set)
func (f FeedConfig) IsEnabled() bool {
	if f.Enabled == nil {
		return true
	}
	return *f.Enabled
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title: "St. Agnes of Assisi",
			URL:   "https://michaelalavelle.github.io",
			Base:  "/stagnesofassisi",
		},
		ContentDir:      "content",
		OutputDirectory: "dist",
		HomeLimit:       3,
		Sections: []SectionConfig{
			{
				Name:       "announcements",
				Title:      "Announcements",
				Collection: "announcements",
				Order:      Newest,
				Feeds: []FeedConfig{
					{
						T:        WordPress,
						Category: "announcements",
						Limit:    10,
						ParserT:  parser.Attachments,
					},
				},
			},
			{
				Name:       "events",
				Title:      "Events",
				Collection: "events",
				Order:      Oldest,
			},
		},
		Filters: map[string]Filter{},
		Bulletin: BulletinConfig{
			Path:   "bulletin.pdf",
			Width:  "176mm",
			Height: "250mm",
			Margin: "15mm",
		},
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}
