package images

import (
	"net/url"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// CDN hosts that serve images without a file extension.
var knownImageHosts = []string{
	"pexels.com",
	"unsplash.com",
	"cloudinary.com",
	"imgix.net",
	"wp.com",
	"wordpress.com",
	"flickr.com",
	"staticflickr.com",
}

var trackingPatterns = []string{
	"pixel",
	"spacer",
	"blank",
	"1x1",
	"tracking",
	"beacon",
	"analytics",
	"gravatar",
	"avatar",
}

// IsValidImageURL reports whether rawURL is absolute and looks like an image
// by extension or by host.
func IsValidImageURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	host := strings.ToLower(parsed.Host)
	for _, known := range knownImageHosts {
		if strings.Contains(host, known) {
			return true
		}
	}

	return false
}

func isImageMIMEType(mimeType string) bool {
	return imageMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

func isTrackingURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range trackingPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
