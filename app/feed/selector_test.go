package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSelector(now time.Time) *Selector {
	s := NewSelector(time.UTC)
	s.now = func() time.Time { return now }
	return s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSelector_Run_WindowAndOrder(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	selector := newTestSelector(now)

	entries := []Entry{
		{Title: "old", Link: "https://example.com/old", Published: timePtr(now.Add(-72 * time.Hour))},
		{Title: "mid", Link: "https://example.com/mid", Published: timePtr(now.Add(-10 * time.Hour))},
		{Title: "new", Link: "https://example.com/new", Published: timePtr(now.Add(-1 * time.Hour))},
		{Title: "edge", Link: "https://example.com/edge", Published: timePtr(now.Add(-48 * time.Hour))},
	}

	result := selector.Run(entries, 10, 48*time.Hour)

	assert.Equal(t, []string{"new", "mid", "edge"}, titles(result))
}

func TestSelector_Run_Cap(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	selector := newTestSelector(now)

	var entries []Entry
	for i := 0; i < 8; i++ {
		entries = append(entries, Entry{
			Title:     "entry",
			Link:      "https://example.com/" + string(rune('a'+i)),
			Published: timePtr(now.Add(-time.Duration(i) * time.Hour)),
		})
	}

	result := selector.Run(entries, 5, 48*time.Hour)

	require.Len(t, result, 5)
	assert.Equal(t, "https://example.com/a", result[0].Link, "newest entry first")

	assert.Empty(t, selector.Run(entries, 0, 48*time.Hour))
}

func TestSelector_Run_DropsEntriesWithoutDateOrLink(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	selector := newTestSelector(now)

	entries := []Entry{
		{Title: "no date", Link: "https://example.com/no-date"},
		{Title: "no link", Published: timePtr(now)},
		{Title: "bad raw", Link: "https://example.com/bad", PublishedRaw: "not a date"},
		{Title: "ok", Link: "https://example.com/ok", Updated: timePtr(now.Add(-time.Hour))},
	}

	result := selector.Run(entries, 5, 48*time.Hour)

	assert.Equal(t, []string{"ok"}, titles(result))
}

func TestSelector_EntryDate_Precedence(t *testing.T) {
	selector := NewSelector(time.UTC)

	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    Entry
		expected time.Time
	}{
		{"published wins", Entry{Published: &published, Updated: &updated, CreatedRaw: "2024-01-03T00:00:00Z"}, published},
		{"updated before created", Entry{Updated: &updated, CreatedRaw: "2024-01-03T00:00:00Z"}, updated},
		{"created only", Entry{CreatedRaw: "2024-01-03T00:00:00Z"}, created},
		{"raw published", Entry{PublishedRaw: "Mon, 01 Jan 2024 00:00:00 GMT"}, published},
		{"raw updated", Entry{UpdatedRaw: "2024-01-02T00:00:00Z"}, updated},
		{"raw published before created", Entry{PublishedRaw: "2024-01-01T00:00:00Z", CreatedRaw: "2024-01-03T00:00:00Z"}, published},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := selector.EntryDate(tt.entry)
			require.True(t, ok)
			assert.True(t, date.Equal(tt.expected), "expected %v, got %v", tt.expected, date)
		})
	}
}

func TestSelector_EntryDate_NaiveRawUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	selector := NewSelector(loc)
	expected := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	for _, entry := range []Entry{
		{PublishedRaw: "2024-01-01 10:00:00"},
		{CreatedRaw: "2024-01-01 10:00:00"},
	} {
		date, ok := selector.EntryDate(entry)
		require.True(t, ok)
		assert.True(t, date.Equal(expected), "expected %v, got %v", expected, date)
	}
}

func TestSelector_Key(t *testing.T) {
	selector := NewSelector(time.UTC)
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		entry  Entry
		prefix string
		exact  string
	}{
		{"atom id", Entry{ID: "urn:1", GUID: "g", Link: "https://x"}, "id:", "id:urn:1"},
		{"rss guid", Entry{GUID: "guid-1", Link: "https://x"}, "guid:", "guid:guid-1"},
		{"link", Entry{Link: "https://example.com/a"}, "link:", "link:https://example.com/a"},
		{"hash", Entry{Title: "Title", Published: &published}, "hash:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := selector.Key(tt.entry, "https://example.com/feed")
			assert.True(t, strings.HasPrefix(key, tt.prefix), "expected prefix %s, got %s", tt.prefix, key)
			if tt.exact != "" {
				assert.Equal(t, tt.exact, key)
			}
		})
	}
}

func TestSelector_Key_HashIsDeterministic(t *testing.T) {
	selector := NewSelector(time.UTC)
	entry := Entry{Title: "No identifiers"}

	first := selector.Key(entry, "https://example.com/feed")
	second := selector.Key(entry, "https://example.com/feed")
	other := selector.Key(entry, "https://other.example.com/feed")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other, "keys differ across feeds")
	assert.Len(t, first, len("hash:")+32)
}
