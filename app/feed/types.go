package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title    string
	Link     string
	Language string
	FeedType string // rss or atom
}

type MediaKind string

const (
	MediaContent   MediaKind = "media:content"
	MediaThumbnail MediaKind = "media:thumbnail"
	MediaEnclosure MediaKind = "enclosure"
	MediaLink      MediaKind = "link"
)

type Media struct {
	URL    string
	Type   string // MIME type when the feed declares one
	Medium string // media:content medium attribute
	Kind   MediaKind
}

// Entry is a feed item normalized at the parsing boundary. Every optional
// field is present with its zero value when the feed omits it.
type Entry struct {
	ID           string // Atom id
	GUID         string // RSS guid
	Title        string
	Link         string
	Content      string // content:encoded or Atom content
	Summary      string // description or Atom summary
	Published    *time.Time
	Updated      *time.Time
	PublishedRaw string
	UpdatedRaw   string
	CreatedRaw   string // dc:date, parsed by the selector in the configured timezone
	Media        []Media
	Authors      []string
	Categories   []string
}

// Body returns the richest text the feed carries for the entry.
func (e Entry) Body() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Summary
}

// Configuration types

const DefaultMaxPerRun = 5

type Source struct {
	Name             string   `yaml:"name"`
	URL              string   `yaml:"url"`
	DefaultCategory  string   `yaml:"default_category"`
	DefaultTags      []string `yaml:"default_tags"`
	MaxPerRun        int      `yaml:"max_per_run"`
	UseOriginalTitle bool     `yaml:"use_original_title"`
	ExtractContent   bool     `yaml:"extract_content"` // fetch the linked page when the feed body is too short
	PostStatus       string   `yaml:"post_status"`
	Filters          []Filter `yaml:"filters"`
}

type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
