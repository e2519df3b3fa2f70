package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

const requestInterval = time.Second

// Client talks to the WordPress REST API with application-password auth.
// All calls share one limiter.
type Client struct {
	http     *httpclient.Client
	baseURL  string
	username string
	password string
	limiter  *rate.Limiter
}

func NewClient(client *httpclient.Client, baseURL, username, password string) *Client {
	return &Client{
		http:     client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		limiter:  rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + "/wp-json/wp/v2/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	return c.send(ctx, http.MethodGet, c.endpoint(path, params), nil, nil, target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	return c.send(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(data), headers, target)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := httpclient.CheckResponse(resp); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
