package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/michaelalavelle/stagnesofassisi/config"
	"github.com/michaelalavelle/stagnesofassisi/content"
	"github.com/michaelalavelle/stagnesofassisi/fetcher"
	"github.com/michaelalavelle/stagnesofassisi/fetcher/types"
	"github.com/michaelalavelle/stagnesofassisi/filter"
	"github.com/michaelalavelle/stagnesofassisi/parser"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	teaserLength   = 180
	BulletinPage   = "bulletin.html"
	local          = "local"
	dateLayout     = "Monday, January 2, 2006"
	dateTimeLayout = "Monday, January 2, 2006 at 3:04 PM"
)

// Entry is a rendered item of a section, from a local collection or a feed
type Entry struct {
	Source   string
	Slug     string
	Title    string
	Date     time.Time
	Location string
	HTML     template.HTML
	Teaser   string
}

type Section struct {
	Name    string
	Title   string
	Path    string
	Entries []Entry
}

// Site is the data every page template receives
type Site struct {
	Title     string
	URL       string
	Base      string
	HomeLimit int
	Sections  []Section
	Section   *Section // Set while rendering a section page
	BuiltAt   time.Time
}

type sectionSource struct {
	config  config.SectionConfig
	feeds   []config.FeedConfig
	fetches []types.FeedFetcher
}

// Builder renders the site from the content directory and configured feeds
type Builder struct {
	conf     config.Config
	loader   *content.Loader
	filters  *filter.FilterPipeline
	sections []sectionSource
	tmpl     *template.Template
	now      func() time.Time
}

// NewBuilder prepares fetchers for every enabled feed. A nil client selects http.DefaultClient.
func NewBuilder(conf config.Config, client *http.Client) (*Builder, error) {
	filters, err := filter.NewFilterPipeline(conf.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filters with %w", err)
	}

	var sections []sectionSource
	for _, sc := range conf.Sections {
		if !sc.IsEnabled() {
			slog.Debug("skipping disabled section", "section", sc.Name)
			continue
		}
		if sc.Name == "" {
			return nil, fmt.Errorf("section without a name")
		}
		src := sectionSource{config: sc}
		for _, fc := range sc.Feeds {
			if !fc.IsEnabled() {
				slog.Debug("skipping disabled feed", "section", sc.Name, "category", fc.Category)
				continue
			}
			f, err := fetcher.New(fc, client)
			if err != nil {
				return nil, fmt.Errorf("section '%s' feed failed to initialize with %w", sc.Name, err)
			}
			src.feeds = append(src.feeds, fc)
			src.fetches = append(src.fetches, f)
		}
		sections = append(sections, src)
	}

	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"date":  formatDate,
		"url":   func(p string) string { return link(conf.Site.Base, p) },
		"first": first,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates with %w", err)
	}

	return &Builder{
		conf:     conf,
		loader:   content.NewLoader(conf.ContentDir),
		filters:  filters,
		sections: sections,
		tmpl:     tmpl,
		now:      time.Now,
	}, nil
}

// Collect loads collections and fetches feeds for every enabled section
func (b *Builder) Collect(ctx context.Context) (Site, error) {
	site := Site{
		Title:     b.conf.Site.Title,
		URL:       b.conf.Site.URL,
		Base:      b.conf.Site.Base,
		HomeLimit: b.conf.HomeLimit,
		BuiltAt:   b.now(),
	}

	for _, src := range b.sections {
		select {
		case <-ctx.Done():
			return site, ctx.Err()
		default:
		}

		section := Section{
			Name:  src.config.Name,
			Title: src.config.Title,
			Path:  src.config.Name,
		}
		if section.Title == "" {
			section.Title = src.config.Name
		}

		if src.config.Collection != "" {
			entries, err := b.loader.Load(src.config.Collection)
			if err != nil {
				return site, fmt.Errorf("section '%s' failed to load content with %w", src.config.Name, err)
			}
			for _, e := range entries {
				section.Entries = append(section.Entries, Entry{
					Source:   local,
					Slug:     e.Slug,
					Title:    e.Title,
					Date:     e.Date,
					Location: e.Location,
					HTML:     template.HTML(e.HTML),
					Teaser:   parser.Teaser(e.HTML, teaserLength),
				})
			}
		}

		for i, f := range src.fetches {
			fc := src.feeds[i]
			items := f.FetchPostsByCategory(ctx, fc.Category, fc.Limit)
			items = b.filters.Apply(items, fc.FilterNames)
			slog.Info("feed fetched", "section", section.Name, "type", fc.T, "category", fc.Category, "items", len(items))
			for _, item := range items {
				section.Entries = append(section.Entries, Entry{
					Source: item.Source,
					Title:  item.Title,
					Date:   item.Date,
					HTML:   template.HTML(item.HTML),
					Teaser: parser.Teaser(item.HTML, teaserLength),
				})
			}
		}

		sortEntries(section.Entries, src.config.Order)
		if src.config.Limit > 0 && len(section.Entries) > src.config.Limit {
			section.Entries = section.Entries[:src.config.Limit]
		}
		site.Sections = append(site.Sections, section)
	}

	return site, nil
}

// Build renders the home page, one page per section and the printable bulletin into outDir
func (b *Builder) Build(ctx context.Context, outDir string) (Site, error) {
	site, err := b.Collect(ctx)
	if err != nil {
		return site, err
	}

	if err := b.render("index.html", site, filepath.Join(outDir, "index.html")); err != nil {
		return site, err
	}
	for i := range site.Sections {
		page := site
		page.Section = &site.Sections[i]
		target := filepath.Join(outDir, filepath.FromSlash(page.Section.Path), "index.html")
		if err := b.render("section.html", page, target); err != nil {
			return site, err
		}
	}
	if err := b.render(BulletinPage, site, filepath.Join(outDir, BulletinPage)); err != nil {
		return site, err
	}

	return site, nil
}

func (b *Builder) render(name string, data Site, target string) error {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s with %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s' with %w", target, err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write '%s' with %w", target, err)
	}
	slog.Debug("page written", "path", target)
	return nil
}

// sortEntries orders by date, newest first unless order is config.Oldest.
// Entries without a usable date go last.
func sortEntries(entries []Entry, order config.Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		if order == config.Oldest {
			return a.Before(b)
		}
		return a.After(b)
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

// link joins base and p into a site-absolute path with a trailing slash for directories
func link(base, p string) string {
	joined := path.Join("/", base, p)
	if p == "" || strings.HasSuffix(p, "/") || path.Ext(p) == "" {
		if !strings.HasSuffix(joined, "/") {
			joined += "/"
		}
	}
	return joined
}

func first(n int, entries []Entry) []Entry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[:n]
}
