package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
)

const (
	defaultFeedItems  = 20
	defaultEntryLimit = 10
	maxEntryLimit     = 100
)

func NewHandler(ledger database.Ledger, channel feed.Channel, sources []feed.Source) *Handler {
	return &Handler{
		ledger:    ledger,
		generator: feed.NewGenerator(),
		channel:   channel,
		sources:   sources,
		feedItems: defaultFeedItems,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	records, err := h.ledger.Recent(c.Request.Context(), h.feedItems, "")
	if err != nil {
		slog.Error("Database error", "operation", "recent_entries", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(h.channel, records)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(records)))
	if len(records) > 0 {
		c.Header("X-Last-Updated", records[0].ProcessedAt.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	count, err := h.ledger.Count(c.Request.Context(), "")
	if err != nil {
		slog.Error("Database error", "operation", "health_check", "error", err)
		health["status"] = "unhealthy"
		health["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "healthy"
	health["database"] = "ok"
	health["processed"] = count
	health["configured_feeds"] = len(h.sources)

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	feedURL := c.Query("feed_url")

	count, err := h.ledger.Count(c.Request.Context(), feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "count_entries", "feed_url", feedURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := map[string]interface{}{
		"processed": count,
	}

	if feedURL != "" {
		stats["feed_url"] = feedURL
	} else if byFeed, err := h.ledger.CountByFeed(c.Request.Context()); err == nil {
		feeds := make([]map[string]interface{}, 0, len(byFeed))
		for _, fc := range byFeed {
			feeds = append(feeds, map[string]interface{}{
				"feed_url":  fc.FeedURL,
				"processed": fc.Count,
			})
		}
		stats["feeds"] = feeds
	} else {
		slog.Warn("Failed to count entries by feed", "error", err)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListEntries(c *gin.Context) {
	limit := defaultEntryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = min(parsed, maxEntryLimit)
	}

	feedURL := c.Query("feed_url")

	records, err := h.ledger.Recent(c.Request.Context(), limit, feedURL)
	if err != nil {
		slog.Error("Database error", "operation", "recent_entries", "feed_url", feedURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(records))
	for _, record := range records {
		entry := map[string]interface{}{
			"entry_key":    record.EntryKey,
			"feed_url":     record.FeedURL,
			"title":        record.EntryTitle,
			"link":         record.EntryLink,
			"processed_at": record.ProcessedAt.Format(time.RFC3339),
		}
		if record.PostID != nil {
			entry["post_id"] = *record.PostID
		}
		if record.PostURL != nil {
			entry["post_url"] = *record.PostURL
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	counts := make(map[string]int)
	if byFeed, err := h.ledger.CountByFeed(c.Request.Context()); err == nil {
		for _, fc := range byFeed {
			counts[fc.FeedURL] = fc.Count
		}
	} else {
		slog.Warn("Failed to count entries by feed", "error", err)
	}

	feeds := make([]map[string]interface{}, 0, len(h.sources))
	for _, source := range h.sources {
		feeds = append(feeds, map[string]interface{}{
			"name":               source.Name,
			"url":                source.URL,
			"max_per_run":        source.MaxPerRun,
			"default_category":   source.DefaultCategory,
			"use_original_title": source.UseOriginalTitle,
			"extract_content":    source.ExtractContent,
			"filters":            len(source.Filters),
			"processed":          counts[source.URL],
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"feeds": feeds,
		"total": len(feeds),
	})
}
