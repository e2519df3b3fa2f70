package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceList holds the feed sources of one configuration file in file order.
type SourceList struct {
	path    string
	sources []*Source
}

type sourceFile struct {
	Feeds []*Source `yaml:"feeds"`
}

func NewSourceList(path string) *SourceList {
	return &SourceList{path: path}
}

func (sl *SourceList) Run() error {
	data, err := os.ReadFile(sl.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sources, err := ParseSources(data)
	if err != nil {
		return fmt.Errorf("invalid config %s: %w", sl.path, err)
	}

	for _, source := range sources {
		slog.Debug("Feed source loaded", "feed", source.Name, "url", source.URL, "max_per_run", source.MaxPerRun)
	}

	sl.sources = sources
	return nil
}

func (sl *SourceList) GetSources() []*Source {
	return append([]*Source(nil), sl.sources...)
}

func (sl *SourceList) GetSource(name string) (*Source, error) {
	for _, source := range sl.sources {
		if strings.EqualFold(source.Name, name) {
			return source, nil
		}
	}
	return nil, fmt.Errorf("feed source with name '%s' not found", name)
}

func (sl *SourceList) GetSourceCount() int {
	return len(sl.sources)
}

// ParseSources decodes a feeds document, applies defaults and validates
// every source.
func ParseSources(data []byte) ([]*Source, error) {
	var file sourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	seen := make(map[string]bool, len(file.Feeds))
	for i, source := range file.Feeds {
		if source == nil {
			return nil, fmt.Errorf("feed at index %d is empty", i)
		}

		source.Name = strings.TrimSpace(source.Name)
		source.URL = strings.TrimSpace(source.URL)
		if source.MaxPerRun == 0 {
			source.MaxPerRun = DefaultMaxPerRun
		}

		if err := validateSource(source); err != nil {
			return nil, fmt.Errorf("feed at index %d: %w", i, err)
		}

		// names are matched case-insensitively by --single-feed
		name := strings.ToLower(source.Name)
		if seen[name] {
			return nil, fmt.Errorf("duplicate feed name: %s", source.Name)
		}
		seen[name] = true
	}

	return file.Feeds, nil
}

func validateSource(source *Source) error {
	requiredFields := map[string]string{
		"feed name": source.Name,
		"feed URL":  source.URL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	parsed, err := url.Parse(source.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("feed URL must be an http(s) URL: %s", source.URL)
	}

	if source.MaxPerRun < 0 {
		return fmt.Errorf("max per run must be non-negative")
	}

	validStatuses := map[string]bool{
		"":        true,
		"publish": true,
		"draft":   true,
		"pending": true,
		"private": true,
	}

	if !validStatuses[source.PostStatus] {
		return fmt.Errorf("invalid post status: %s", source.PostStatus)
	}

	validFields := map[string]bool{
		"title":      true,
		"summary":    true,
		"content":    true,
		"authors":    true,
		"link":       true,
		"categories": true,
	}

	for i, filter := range source.Filters {
		if !validFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
