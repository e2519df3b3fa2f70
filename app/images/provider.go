package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

const (
	searchResultsPerPage = 5
	searchOrientation    = "landscape"
)

// Provider searches a stock photo service. A nil candidate with nil error
// means the search had no results.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) (*Candidate, error)
}

func getJSON(ctx context.Context, client *httpclient.Client, endpoint string, params url.Values, headers map[string]string, target any) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
