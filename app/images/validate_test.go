package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/photo.jpg", true},
		{"https://example.com/photo.JPEG", true},
		{"https://example.com/a/b/photo.webp", true},
		{"https://example.com/photo.bmp", true},
		{"https://images.pexels.com/photos/123", true},
		{"https://i0.wp.com/site/image", true},
		{"https://res.cloudinary.com/demo/upload/sample", true},
		{"https://example.com/article", false},
		{"https://example.com/video.mp4", false},
		{"/relative/photo.jpg", false},
		{"", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidImageURL(tt.url))
		})
	}
}

func TestIsTrackingURL(t *testing.T) {
	assert.True(t, isTrackingURL("https://example.com/pixel.gif"))
	assert.True(t, isTrackingURL("https://example.com/img/1x1.png"))
	assert.True(t, isTrackingURL("https://secure.gravatar.com/avatar/abc.jpg"))
	assert.True(t, isTrackingURL("https://example.com/Analytics/beacon.png"))
	assert.False(t, isTrackingURL("https://example.com/photos/courthouse.jpg"))
}
