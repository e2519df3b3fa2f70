package images

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lysyi3m/rss-press/app/httpclient"
	"golang.org/x/time/rate"
)

const (
	unsplashBaseURL     = "https://api.unsplash.com"
	unsplashMinInterval = time.Second
)

type unsplashSearchResponse struct {
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
		User struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"user"`
		Links struct {
			DownloadLocation string `json:"download_location"`
		} `json:"links"`
	} `json:"results"`
}

type UnsplashClient struct {
	client    *httpclient.Client
	accessKey string
	baseURL   string
	limiter   *rate.Limiter
}

func NewUnsplashClient(client *httpclient.Client, accessKey string) *UnsplashClient {
	return &UnsplashClient{
		client:    client,
		accessKey: accessKey,
		baseURL:   unsplashBaseURL,
		limiter:   rate.NewLimiter(rate.Every(unsplashMinInterval), 1),
	}
}

func (u *UnsplashClient) Name() string {
	return "Unsplash"
}

func (u *UnsplashClient) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Client-ID " + u.accessKey,
		"Accept-Version": "v1",
	}
}

func (u *UnsplashClient) Search(ctx context.Context, query string) (*Candidate, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	slog.Info("Searching Unsplash", "query", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(searchResultsPerPage))
	params.Set("orientation", searchOrientation)

	var result unsplashSearchResponse
	if err := getJSON(ctx, u.client, u.baseURL+"/search/photos", params, u.headers(), &result); err != nil {
		return nil, fmt.Errorf("failed to search unsplash: %w", err)
	}

	for _, photo := range result.Results {
		imageURL := cmp.Or(photo.URLs.Regular, photo.URLs.Small)
		if imageURL == "" {
			continue
		}

		photographer := cmp.Or(photo.User.Name, "Unknown")
		candidate := &Candidate{
			URL:         imageURL,
			AltText:     fmt.Sprintf("Photo by %s on Unsplash", photographer),
			Attribution: photographer,
			Origin:      OriginUnsplash,
		}
		if photo.User.Username != "" {
			candidate.PhotographerURL = "https://unsplash.com/@" + photo.User.Username
		}

		u.trackDownload(ctx, photo.Links.DownloadLocation)

		return candidate, nil
	}

	return nil, nil
}

// trackDownload pings the download endpoint Unsplash requires for every used
// photo. Failures are ignored.
func (u *UnsplashClient) trackDownload(ctx context.Context, downloadLocation string) {
	if downloadLocation == "" {
		return
	}

	trackCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(trackCtx, http.MethodGet, downloadLocation, nil)
	if err != nil {
		return
	}
	for key, value := range u.headers() {
		req.Header.Set(key, value)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		slog.Debug("Unsplash download tracking failed", "error", err)
		return
	}
	resp.Body.Close()
}
