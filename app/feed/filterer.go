package feed

import (
	"fmt"
	"log/slog"
	"strings"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the entries that pass every filter of the source.
func (f *Filterer) Run(entries []Entry, source *Source) []Entry {
	if len(source.Filters) == 0 {
		return entries
	}

	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if isFiltered, reason := f.applyFilters(entry, source.Filters); isFiltered {
			slog.Debug("Entry filtered", "feed", source.Name, "link", entry.Link, "reason", reason)
			continue
		}
		kept = append(kept, entry)
	}

	return kept
}

func (f *Filterer) applyFilters(entry Entry, filters []Filter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(entry, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(entry Entry, field string) string {
	switch field {
	case "title":
		return entry.Title
	case "summary":
		return entry.Summary
	case "content":
		return entry.Body()
	case "authors":
		return strings.Join(entry.Authors, " ")
	case "link":
		return entry.Link
	case "categories":
		return strings.Join(entry.Categories, " ")
	default:
		return ""
	}
}
