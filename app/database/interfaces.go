package database

import (
	"context"
)

type Ledger interface {
	IsProcessed(ctx context.Context, entryKey string) (bool, error)
	MarkProcessed(ctx context.Context, params MarkParams) error

	Count(ctx context.Context, feedURL string) (int, error)
	CountByFeed(ctx context.Context) ([]FeedCount, error)
	Recent(ctx context.Context, limit int, feedURL string) ([]Record, error)

	Clear(ctx context.Context) (int64, error)
}
