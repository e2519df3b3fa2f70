package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"slices"
	"time"

	"github.com/araddon/dateparse"
)

const DefaultWindow = 48 * time.Hour

// Selector picks the recent entries of a feed worth processing.
type Selector struct {
	location *time.Location
	now      func() time.Time
}

func NewSelector(location *time.Location) *Selector {
	if location == nil {
		location = time.UTC
	}
	return &Selector{
		location: location,
		now:      time.Now,
	}
}

type datedEntry struct {
	entry Entry
	date  time.Time
}

// Run keeps entries with a link and a date inside the window, newest first,
// capped at maxCount.
func (s *Selector) Run(entries []Entry, maxCount int, window time.Duration) []Entry {
	if maxCount <= 0 || len(entries) == 0 {
		return nil
	}

	cutoff := s.now().Add(-window)

	candidates := make([]datedEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Link == "" {
			slog.Debug("Entry without link dropped", "title", entry.Title)
			continue
		}

		date, ok := s.EntryDate(entry)
		if !ok {
			slog.Debug("Entry without usable date dropped", "link", entry.Link)
			continue
		}

		if date.Before(cutoff) {
			continue
		}

		candidates = append(candidates, datedEntry{entry: entry, date: date})
	}

	slices.SortStableFunc(candidates, func(a, b datedEntry) int {
		return b.date.Compare(a.date)
	})

	if len(candidates) > maxCount {
		candidates = candidates[:maxCount]
	}

	selected := make([]Entry, len(candidates))
	for i, candidate := range candidates {
		selected[i] = candidate.entry
	}

	return selected
}

// EntryDate prefers the timestamps the feed parser already resolved and falls
// back to the raw date strings (dc:date last), interpreted in the configured
// location.
func (s *Selector) EntryDate(entry Entry) (time.Time, bool) {
	for _, date := range []*time.Time{entry.Published, entry.Updated} {
		if date != nil && !date.IsZero() {
			return *date, true
		}
	}

	for _, raw := range []string{entry.PublishedRaw, entry.UpdatedRaw, entry.CreatedRaw} {
		if raw == "" {
			continue
		}
		if date, err := dateparse.ParseIn(raw, s.location); err == nil {
			return date, true
		}
	}

	return time.Time{}, false
}

// Key derives the stable identity of an entry used by the ledger.
func (s *Selector) Key(entry Entry, feedURL string) string {
	switch {
	case entry.ID != "":
		return "id:" + entry.ID
	case entry.GUID != "":
		return "guid:" + entry.GUID
	case entry.Link != "":
		return "link:" + entry.Link
	}

	var isoDate string
	if date, ok := s.EntryDate(entry); ok {
		isoDate = date.UTC().Format(time.RFC3339)
	}

	sum := sha256.Sum256([]byte(entry.Title + "|" + isoDate + "|" + feedURL))
	return "hash:" + hex.EncodeToString(sum[:])[:32]
}
