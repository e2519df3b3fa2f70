package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-press/app/feed"
)

const (
	DefaultEntryDelay = time.Second
	DefaultFeedDelay  = time.Second
)

// Runner processes feeds one after another in configuration order.
type Runner struct {
	fetcher    FeedFetcher
	filterer   *feed.Filterer
	selector   *feed.Selector
	processor  *EntryProcessor
	window     time.Duration
	entryDelay time.Duration
	feedDelay  time.Duration
}

func NewRunner(fetcher FeedFetcher, filterer *feed.Filterer, selector *feed.Selector, processor *EntryProcessor, window time.Duration) *Runner {
	return &Runner{
		fetcher:    fetcher,
		filterer:   filterer,
		selector:   selector,
		processor:  processor,
		window:     window,
		entryDelay: DefaultEntryDelay,
		feedDelay:  DefaultFeedDelay,
	}
}

// Run returns the aggregate statistics. An error means the run stopped early
// on a ledger failure or cancellation; the statistics cover what completed.
func (r *Runner) Run(ctx context.Context, sources []*feed.Source) (*RunStats, error) {
	stats := &RunStats{}

	for i, source := range sources {
		if i > 0 {
			if err := sleep(ctx, r.feedDelay); err != nil {
				return stats, err
			}
		}

		task := NewProcessFeedTask(source, r.fetcher, r.filterer, r.selector, r.processor, r.window, r.entryDelay)

		feedStats, err := task.Execute(ctx)
		stats.Add(feedStats)
		if err != nil {
			slog.Error("Run aborted", "feed", source.Name, "error", err)
			return stats, err
		}
	}

	slog.Info("Run complete",
		"feeds", stats.Feeds,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, nil
}
