package tasks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-press/app/feed"
)

type ProcessFeedTask struct {
	Task
	Source     *feed.Source
	fetcher    FeedFetcher
	filterer   *feed.Filterer
	selector   *feed.Selector
	processor  *EntryProcessor
	window     time.Duration
	entryDelay time.Duration
}

func NewProcessFeedTask(source *feed.Source, fetcher FeedFetcher, filterer *feed.Filterer, selector *feed.Selector,
	processor *EntryProcessor, window, entryDelay time.Duration) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:       NewTask(TaskTypeProcessFeed, source.Name),
		Source:     source,
		fetcher:    fetcher,
		filterer:   filterer,
		selector:   selector,
		processor:  processor,
		window:     window,
		entryDelay: entryDelay,
	}
}

// Execute processes the selected entries of one feed. A fetch or parse
// failure counts as a single error. The returned error is reserved for
// failures that must stop the run.
func (t *ProcessFeedTask) Execute(ctx context.Context) (FeedStats, error) {
	var stats FeedStats

	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	default:
	}

	t.Start()

	entries, err := t.fetcher.Run(ctx, t.Source)
	if err != nil {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if errors.Is(err, feed.ErrEmptyFeed) {
			slog.Warn("Feed is empty", "feed", t.FeedName)
		} else {
			slog.Error("Failed to fetch feed", "feed", t.FeedName, "url", t.Source.URL, "error", err)
		}
		stats.Errors++
		return stats, nil
	}

	entries = t.filterer.Run(entries, t.Source)
	entries = t.selector.Run(entries, t.Source.MaxPerRun, t.window)

	if len(entries) == 0 {
		slog.Info("No valid entries", "feed", t.FeedName)
		return stats, nil
	}

	slog.Info("Entries to process", "feed", t.FeedName, "count", len(entries))

	for _, entry := range entries {
		result, err := t.processor.Run(ctx, entry, t.Source)
		if err != nil {
			return stats, err
		}
		stats.Add(result)

		if err := sleep(ctx, t.entryDelay); err != nil {
			return stats, err
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"task_id", t.GetID(),
		"feed", t.GetFeedName(),
		"duration", t.GetDuration(),
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats, nil
}
