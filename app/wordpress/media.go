package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/lysyi3m/rss-press/app/images"
)

// UploadMedia stores the image in the media library and returns its id.
// Alt text is applied afterwards on a best-effort basis.
func (c *Client) UploadMedia(ctx context.Context, image *images.Image) (int64, error) {
	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": image.Filename}),
		"Content-Type":        contentType,
	}

	slog.Debug("Uploading media", "filename", image.Filename, "size", len(image.Data))

	var uploaded media
	err := c.send(ctx, http.MethodPost, c.endpoint("media", nil), bytes.NewReader(image.Data), headers, &uploaded)
	if err != nil {
		return 0, fmt.Errorf("failed to upload media: %w", err)
	}
	if uploaded.ID == 0 {
		return 0, fmt.Errorf("media upload returned no id")
	}

	if image.AltText != "" {
		path := fmt.Sprintf("media/%d", uploaded.ID)
		if err := c.postJSON(ctx, path, map[string]string{"alt_text": image.AltText}, nil); err != nil {
			slog.Warn("Failed to update media alt text", "media_id", uploaded.ID, "error", err)
		}
	}

	return uploaded.ID, nil
}
