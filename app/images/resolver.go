package images

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-press/app/feed"
)

const maxAltTextLength = 100

type downloader interface {
	Run(ctx context.Context, candidate Candidate) (*Image, error)
}

// Resolver finds a featured image for an entry: first from the feed itself,
// then from the configured stock providers in order.
type Resolver struct {
	downloader downloader
	providers  []Provider
}

func NewResolver(downloader *Downloader, providers ...Provider) *Resolver {
	return &Resolver{
		downloader: downloader,
		providers:  providers,
	}
}

// Run returns a downloaded image or nil. Failures are logged, never returned.
func (r *Resolver) Run(ctx context.Context, entry feed.Entry, title, feedName string) *Image {
	if imageURL := FindRSSImage(entry); imageURL != "" {
		candidate := Candidate{
			URL:     imageURL,
			AltText: truncateRunes(title, maxAltTextLength),
			Origin:  OriginRSS,
		}

		img, err := r.downloader.Run(ctx, candidate)
		if err == nil {
			slog.Info("Using feed image", "url", imageURL)
			return img
		}
		slog.Warn("Feed image unusable, trying stock providers", "url", imageURL, "error", err)
	}

	if len(r.providers) == 0 {
		slog.Debug("No stock image providers configured")
		return nil
	}

	query := SearchQuery(title + " " + feedName)

	for _, provider := range r.providers {
		if ctx.Err() != nil {
			return nil
		}

		candidate, err := provider.Search(ctx, query)
		if err != nil {
			slog.Warn("Stock image search failed", "provider", provider.Name(), "query", query, "error", err)
			continue
		}
		if candidate == nil {
			slog.Info("No stock image results", "provider", provider.Name(), "query", query)
			continue
		}

		img, err := r.downloader.Run(ctx, *candidate)
		if err != nil {
			slog.Warn("Stock image download failed", "provider", provider.Name(), "url", candidate.URL, "error", err)
			continue
		}

		slog.Info("Using stock image", "provider", provider.Name(), "photographer", candidate.Attribution)
		return img
	}

	slog.Warn("No image available", "query", query)
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
