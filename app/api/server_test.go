package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
)

type fakeLedger struct {
	records []database.Record
	err     error
}

func (l *fakeLedger) IsProcessed(context.Context, string) (bool, error) { return false, l.err }
func (l *fakeLedger) MarkProcessed(context.Context, database.MarkParams) error {
	return l.err
}

func (l *fakeLedger) Count(_ context.Context, feedURL string) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	return len(l.filter(feedURL)), nil
}

func (l *fakeLedger) CountByFeed(context.Context) ([]database.FeedCount, error) {
	if l.err != nil {
		return nil, l.err
	}
	counts := map[string]int{}
	var order []string
	for _, r := range l.records {
		if _, ok := counts[r.FeedURL]; !ok {
			order = append(order, r.FeedURL)
		}
		counts[r.FeedURL]++
	}
	result := make([]database.FeedCount, 0, len(order))
	for _, url := range order {
		result = append(result, database.FeedCount{FeedURL: url, Count: counts[url]})
	}
	return result, nil
}

func (l *fakeLedger) Recent(_ context.Context, limit int, feedURL string) ([]database.Record, error) {
	if l.err != nil {
		return nil, l.err
	}
	records := l.filter(feedURL)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *fakeLedger) Clear(context.Context) (int64, error) { return 0, l.err }

func (l *fakeLedger) filter(feedURL string) []database.Record {
	if feedURL == "" {
		return l.records
	}
	var out []database.Record
	for _, r := range l.records {
		if r.FeedURL == feedURL {
			out = append(out, r)
		}
	}
	return out
}

func testLedger() *fakeLedger {
	postID := int64(12)
	postURL := "https://news.example.com/?p=12"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	return &fakeLedger{records: []database.Record{
		{ID: 3, EntryKey: "guid:3", FeedURL: "https://a.example.com/feed", EntryTitle: "Third", EntryLink: "https://a.example.com/3", PostID: &postID, PostURL: &postURL, ProcessedAt: now},
		{ID: 2, EntryKey: "guid:2", FeedURL: "https://b.example.com/feed", EntryTitle: "Second", EntryLink: "https://b.example.com/2", ProcessedAt: now.Add(-time.Hour)},
		{ID: 1, EntryKey: "guid:1", FeedURL: "https://a.example.com/feed", EntryTitle: "First", EntryLink: "https://a.example.com/1", ProcessedAt: now.Add(-2 * time.Hour)},
	}}
}

func newTestServer(ledger database.Ledger, apiKey string) http.Handler {
	sources := []feed.Source{
		{Name: "a", URL: "https://a.example.com/feed", MaxPerRun: 5},
		{Name: "c", URL: "https://c.example.com/feed", MaxPerRun: 2, ExtractContent: true},
	}
	handler := NewHandler(ledger, feed.Channel{Title: "Test Site", Link: "https://news.example.com"}, sources)
	return NewServer(handler, apiKey, "test")
}

func doRequest(t *testing.T, server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	server := newTestServer(testLedger(), "")

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 3, body["processed"])
	assert.EqualValues(t, 2, body["configured_feeds"])
}

func TestHealthUnreachableLedger(t *testing.T) {
	server := newTestServer(&fakeLedger{err: errors.New("disk gone")}, "")

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decode(t, rec)["status"])
}

func TestStats(t *testing.T) {
	server := newTestServer(testLedger(), "")

	rec := doRequest(t, server, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 3, body["processed"])
	feeds, ok := body["feeds"].([]any)
	require.True(t, ok)
	assert.Len(t, feeds, 2)

	rec = doRequest(t, server, http.MethodGet, "/stats?feed_url=https://a.example.com/feed", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body = decode(t, rec)
	assert.EqualValues(t, 2, body["processed"])
	assert.Equal(t, "https://a.example.com/feed", body["feed_url"])
	assert.NotContains(t, body, "feeds")
}

func TestFeedXML(t *testing.T) {
	server := newTestServer(testLedger(), "secret")

	rec := doRequest(t, server, http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("X-Feed-Items"))
	assert.Equal(t, "2024-05-01T12:00:00Z", rec.Header().Get("X-Last-Updated"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Test Site</title>")
	assert.Contains(t, body, "<link>https://news.example.com/?p=12</link>")
	assert.Less(t, strings.Index(body, "Third"), strings.Index(body, "First"))
}

func TestFeedXMLLedgerError(t *testing.T) {
	server := newTestServer(&fakeLedger{err: errors.New("boom")}, "")

	rec := doRequest(t, server, http.MethodGet, "/feed.xml", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEntriesRequireAPIKey(t *testing.T) {
	server := newTestServer(testLedger(), "secret")

	rec := doRequest(t, server, http.MethodGet, "/api/entries", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "API key required", decode(t, rec)["error"])

	rec = doRequest(t, server, http.MethodGet, "/api/entries", map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid API key", decode(t, rec)["error"])

	rec = doRequest(t, server, http.MethodGet, "/api/entries", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/entries", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEntriesWithoutAPIKeyConfigured(t *testing.T) {
	server := newTestServer(testLedger(), "")

	rec := doRequest(t, server, http.MethodGet, "/api/entries?limit=2&feed_url=https://a.example.com/feed", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 2, body["total"])

	entries := body["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, "Third", first["title"])
	assert.EqualValues(t, 12, first["post_id"])
	assert.Equal(t, "https://news.example.com/?p=12", first["post_url"])

	second := entries[1].(map[string]any)
	assert.NotContains(t, second, "post_id")
}

func TestEntriesInvalidLimit(t *testing.T) {
	server := newTestServer(testLedger(), "")

	for _, limit := range []string{"abc", "0", "-3"} {
		rec := doRequest(t, server, http.MethodGet, "/api/entries?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
	}
}

func TestListFeeds(t *testing.T) {
	server := newTestServer(testLedger(), "")

	rec := doRequest(t, server, http.MethodGet, "/api/feeds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 2, body["total"])

	feeds := body["feeds"].([]any)
	a := feeds[0].(map[string]any)
	assert.Equal(t, "a", a["name"])
	assert.EqualValues(t, 2, a["processed"])

	c := feeds[1].(map[string]any)
	assert.EqualValues(t, 0, c["processed"])
	assert.Equal(t, true, c["extract_content"])
}

func TestRootAndOptions(t *testing.T) {
	server := newTestServer(testLedger(), "secret")

	rec := doRequest(t, server, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "RSS Press", body["service"])
	assert.Equal(t, "test", body["version"])

	rec = doRequest(t, server, http.MethodOptions, "/api/entries", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
