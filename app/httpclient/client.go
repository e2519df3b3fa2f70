package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const DefaultMaxRetries = 3

// retryInterval is the first backoff step between retried GET attempts.
var retryInterval = time.Second

type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %s", e.Status)
	}
	return fmt.Sprintf("HTTP error: %s: %s", e.Status, e.Body)
}

// IsStatus reports whether err carries the given HTTP status code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Client sends outbound requests with a fixed user agent. Idempotent requests
// are retried with exponential backoff on transport errors, 429 and 5xx responses.
type Client struct {
	http       *http.Client
	userAgent  string
	maxRetries uint
}

func New(timeout time.Duration, userAgent string, maxRetries uint) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: timeout,
				MaxIdleConns:          20,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		userAgent:  userAgent,
		maxRetries: maxRetries,
	}
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Do sends req and returns the response for any status below 500 except 429.
// The caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return c.http.Do(req)
	}

	ctx := req.Context()
	attempt := 0

	operation := func() (*http.Response, error) {
		attempt++

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			slog.Debug("Request attempt failed", "url", req.URL.String(), "attempt", attempt, "error", err)
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}

		statusErr := readStatusError(resp)
		slog.Debug("Request attempt failed", "url", req.URL.String(), "attempt", attempt, "status", resp.StatusCode)

		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 && seconds <= 60 {
			return nil, errors.Join(statusErr, backoff.RetryAfter(seconds))
		}

		return nil, statusErr
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInterval
	bo.MaxInterval = 30 * time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxRetries+1))
}

// Get fetches url and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// CheckResponse turns a non-2xx response into a *StatusError.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return readStatusError(resp)
}

func readStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
