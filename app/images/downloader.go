package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/lysyi3m/rss-press/app/httpclient"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize    = 5 << 20
	defaultFilename = "featured-image"
)

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

type Downloader struct {
	client   *httpclient.Client
	maxBytes int64
	timeout  time.Duration
}

func NewDownloader(client *httpclient.Client) *Downloader {
	return &Downloader{
		client:   client,
		maxBytes: MaxImageSize,
		timeout:  30 * time.Second,
	}
}

// Run downloads candidate and verifies the body decodes as an image.
func (d *Downloader) Run(ctx context.Context, candidate Candidate) (*Image, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, candidate.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("image too large: over %d bytes", d.maxBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	contentType := imageContentType(resp.Header.Get("Content-Type"), format)

	slog.Info("Image downloaded", "url", candidate.URL, "size_bytes", len(data), "content_type", contentType)

	return &Image{
		Candidate:   candidate,
		Data:        data,
		Filename:    imageFilename(candidate.URL, contentType),
		ContentType: contentType,
	}, nil
}

func imageContentType(header, format string) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}
	return "image/" + format
}

func imageFilename(rawURL, contentType string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		name := path.Base(parsed.Path)
		if name != "." && name != "/" && strings.Contains(name, ".") {
			return name
		}
	}

	ext, ok := extensionsByType[contentType]
	if !ok {
		ext = ".jpg"
	}

	return defaultFilename + ext
}
