// Package content loads the site's Markdown collections.
//
// Each collection is a directory of *.md files that open with a YAML front
// matter block:
//
//	---
//	title: Lenten Fish Fry
//	date: 2024-03-08
//	location: Parish Hall
//	---
//	Body in Markdown.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

type Collection = string

var (
	Announcements = Collection("announcements")
	Events        = Collection("events")
)

// Entry is one rendered document of a collection
type Entry struct {
	Collection Collection
	Slug       string
	Title      string
	Date       time.Time
	Location   string // events only
	HTML       string
}

type frontMatter struct {
	Title    string `yaml:"title" validate:"required"`
	Date     string `yaml:"date" validate:"required"`
	Location string `yaml:"location"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"January 2, 2006",
	"Jan 2, 2006",
}

var fence = []byte("---")

// Loader reads collections from a content directory
type Loader struct {
	dir      string
	validate *validator.Validate
	markdown goldmark.Markdown
}

func NewLoader(dir string) *Loader {
	validate := validator.New()
	// Report front matter keys rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Loader{
		dir:      dir,
		validate: validate,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Load reads every entry of collection, newest first.
// A missing collection directory yields no entries.
func (l *Loader) Load(collection Collection) ([]Entry, error) {
	dir := filepath.Join(l.dir, collection)
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list collection '%s' with %w", collection, err)
	}

	var entries []Entry
	var errs []error
	for _, path := range paths {
		entry, err := l.loadFile(collection, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("'%s': %w", path, err))
			continue
		}
		entries = append(entries, entry)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid entries in collection '%s': %w", collection, errors.Join(errs...))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

func (l *Loader) loadFile(collection Collection, path string) (Entry, error) {
	var entry Entry

	dat, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}

	header, body, err := splitFrontMatter(dat)
	if err != nil {
		return entry, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return entry, fmt.Errorf("failed to decode front matter with %w", err)
	}
	fm.Title = strings.TrimSpace(fm.Title)
	if err := l.validate.Struct(fm); err != nil {
		return entry, fmt.Errorf("invalid front matter: %w", err)
	}

	date, err := coerceDate(fm.Date)
	if err != nil {
		return entry, err
	}

	var buf bytes.Buffer
	if err := l.markdown.Convert(body, &buf); err != nil {
		return entry, fmt.Errorf("failed to render markdown with %w", err)
	}

	entry = Entry{
		Collection: collection,
		Slug:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Title:      fm.Title,
		Date:       date,
		HTML:       buf.String(),
	}
	if collection == Events {
		entry.Location = strings.TrimSpace(fm.Location)
	}
	return entry, nil
}

// splitFrontMatter separates the leading --- delimited YAML block from the body
func splitFrontMatter(dat []byte) ([]byte, []byte, error) {
	dat = bytes.TrimPrefix(dat, []byte("\xef\xbb\xbf"))
	dat = bytes.ReplaceAll(dat, []byte("\r\n"), []byte("\n"))

	lines := bytes.SplitAfter(dat, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), fence) {
		return nil, nil, errors.New("missing front matter")
	}

	offset := len(lines[0])
	for _, line := range lines[1:] {
		if bytes.Equal(bytes.TrimSpace(line), fence) {
			header := dat[len(lines[0]):offset]
			body := dat[offset+len(line):]
			return header, body, nil
		}
		offset += len(line)
	}
	return nil, nil, errors.New("unterminated front matter")
}

func coerceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
