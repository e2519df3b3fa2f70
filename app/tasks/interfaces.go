package tasks

import (
	"context"

	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/images"
	"github.com/lysyi3m/rss-press/app/rewriter"
	"github.com/lysyi3m/rss-press/app/wordpress"
)

// Collaborators of the pipeline. The concrete types live in their own
// packages; tests substitute in-memory fakes.

type FeedFetcher interface {
	Run(ctx context.Context, source *feed.Source) ([]feed.Entry, error)
}

type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type ContentExtractor interface {
	Run(data []byte, pageURL string) (string, error)
}

type Rewriter interface {
	Run(ctx context.Context, contentHTML, originalTitle string, preserveTitle bool) (*rewriter.Article, error)
}

type ImageResolver interface {
	Run(ctx context.Context, entry feed.Entry, title, feedName string) *images.Image
}

type Publisher interface {
	Run(ctx context.Context, params wordpress.PublishParams) (*wordpress.Result, error)
}
