package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestClient() *httpclient.Client {
	return httpclient.New(5*time.Second, "rss-press-test", 0)
}

// imageServer serves a PNG for paths ending in .png and plain text elsewhere.
func imageServer(t *testing.T) *httptest.Server {
	t.Helper()

	data := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/missing.png":
			http.NotFound(w, r)
		case len(r.URL.Path) > 4 && r.URL.Path[len(r.URL.Path)-4:] == ".png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("not an image"))
		}
	}))
	t.Cleanup(server.Close)

	return server
}
