package images

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lysyi3m/rss-press/app/httpclient"
	"golang.org/x/time/rate"
)

const (
	pexelsBaseURL     = "https://api.pexels.com/v1"
	pexelsMinInterval = 500 * time.Millisecond
)

type pexelsSearchResponse struct {
	Photos []struct {
		ID              int64  `json:"id"`
		Photographer    string `json:"photographer"`
		PhotographerURL string `json:"photographer_url"`
		Src             struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

type PexelsClient struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
}

func NewPexelsClient(client *httpclient.Client, apiKey string) *PexelsClient {
	return &PexelsClient{
		client:  client,
		apiKey:  apiKey,
		baseURL: pexelsBaseURL,
		limiter: rate.NewLimiter(rate.Every(pexelsMinInterval), 1),
	}
}

func (p *PexelsClient) Name() string {
	return "Pexels"
}

func (p *PexelsClient) Search(ctx context.Context, query string) (*Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	slog.Info("Searching Pexels", "query", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(searchResultsPerPage))
	params.Set("orientation", searchOrientation)

	var result pexelsSearchResponse
	err := getJSON(ctx, p.client, p.baseURL+"/search", params,
		map[string]string{"Authorization": p.apiKey}, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to search pexels: %w", err)
	}

	for _, photo := range result.Photos {
		imageURL := cmp.Or(photo.Src.Large, photo.Src.Medium)
		if imageURL == "" {
			continue
		}

		photographer := cmp.Or(photo.Photographer, "Unknown")
		return &Candidate{
			URL:             imageURL,
			AltText:         fmt.Sprintf("Photo by %s on Pexels", photographer),
			Attribution:     photographer,
			PhotographerURL: photo.PhotographerURL,
			Origin:          OriginPexels,
		}, nil
	}

	return nil, nil
}
