package images

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/rss-press/app/feed"
)

// FindRSSImage returns the best image URL carried by the entry itself, or "".
// Preference: media:content, media:thumbnail, image enclosures, image-typed
// links, then the first usable <img> in the entry HTML.
func FindRSSImage(entry feed.Entry) string {
	checks := []struct {
		kind   feed.MediaKind
		accept func(feed.Media) bool
	}{
		{feed.MediaContent, func(m feed.Media) bool { return IsValidImageURL(m.URL) }},
		{feed.MediaThumbnail, func(m feed.Media) bool { return IsValidImageURL(m.URL) }},
		{feed.MediaEnclosure, func(m feed.Media) bool { return isImageMIMEType(m.Type) || IsValidImageURL(m.URL) }},
		{feed.MediaLink, func(m feed.Media) bool { return strings.HasPrefix(m.Type, "image/") }},
	}

	for _, check := range checks {
		for _, media := range entry.Media {
			if media.Kind != check.kind || media.URL == "" || isTrackingURL(media.URL) {
				continue
			}
			if check.accept(media) {
				slog.Debug("Image found in feed media", "kind", string(media.Kind), "url", media.URL)
				return media.URL
			}
		}
	}

	return FirstHTMLImage(entry.Body(), entry.Link)
}

// FirstHTMLImage returns the first non-tracking <img> source in html that is a
// valid image URL, resolving relative sources against baseURL.
func FirstHTMLImage(html, baseURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("Failed to parse entry HTML for images", "error", err)
		return ""
	}

	var base *url.URL
	if baseURL != "" {
		base, _ = url.Parse(baseURL)
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || isTrackingURL(src) {
			return true
		}

		if base != nil && !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			ref, err := url.Parse(src)
			if err != nil {
				return true
			}
			src = base.ResolveReference(ref).String()
		}

		if IsValidImageURL(src) {
			found = src
			return false
		}
		return true
	})

	if found != "" {
		slog.Debug("Image found in entry HTML", "url", found)
	}

	return found
}
