package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/rss-press/app/httpclient"
)

const maxDocumentSize = 10 << 20

var ErrEmptyFeed = errors.New("feed has no entries")

// Fetcher downloads feed documents and article pages.
type Fetcher struct {
	client  *httpclient.Client
	parser  *Parser
	timeout time.Duration
}

func NewFetcher(client *httpclient.Client, parser *Parser, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  client,
		parser:  parser,
		timeout: timeout,
	}
}

// Run fetches and parses a feed. A feed without entries is an error.
func (f *Fetcher) Run(ctx context.Context, source *Source) ([]Entry, error) {
	data, err := f.Fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	_, entries, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrEmptyFeed
	}

	return entries, nil
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	return f.client.Get(timeoutCtx, url, maxDocumentSize)
}
