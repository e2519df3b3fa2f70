package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/rewriter"
	"github.com/lysyi3m/rss-press/app/wordpress"
)

type Options struct {
	DryRun bool
	// LedgerDuplicates records entries the publisher skipped as duplicates.
	LedgerDuplicates bool
}

// EntryProcessor takes one selected entry through rewrite, image resolution
// and publishing. Only ledger failures are returned as errors; every other
// failure becomes an OutcomeFailed result.
type EntryProcessor struct {
	ledger    database.Ledger
	selector  *feed.Selector
	rewriter  Rewriter
	resolver  ImageResolver
	publisher Publisher
	pages     PageFetcher
	extractor ContentExtractor
	options   Options
}

func NewEntryProcessor(ledger database.Ledger, selector *feed.Selector, rewriter Rewriter, resolver ImageResolver,
	publisher Publisher, pages PageFetcher, extractor ContentExtractor, options Options) *EntryProcessor {
	return &EntryProcessor{
		ledger:    ledger,
		selector:  selector,
		rewriter:  rewriter,
		resolver:  resolver,
		publisher: publisher,
		pages:     pages,
		extractor: extractor,
		options:   options,
	}
}

func (p *EntryProcessor) Run(ctx context.Context, entry feed.Entry, source *feed.Source) (EntryResult, error) {
	task := NewTask(TaskTypeProcessEntry, source.Name)
	task.Start()

	key := p.selector.Key(entry, source.URL)

	processed, err := p.ledger.IsProcessed(ctx, key)
	if err != nil {
		return EntryResult{}, err
	}
	if processed {
		slog.Info("Entry already processed", "feed", source.Name, "key", key, "title", entry.Title)
		return EntryResult{Outcome: OutcomeSkipped, Reason: "already processed"}, nil
	}

	slog.Info("Processing entry", "feed", source.Name, "task_id", task.GetID(), "title", entry.Title)

	content := p.content(ctx, entry, source)

	article, err := p.rewriter.Run(ctx, content, entry.Title, source.UseOriginalTitle)
	if err != nil {
		if ctx.Err() != nil {
			return EntryResult{}, ctx.Err()
		}
		slog.Error("Rewrite failed", "feed", source.Name, "title", entry.Title, "error", err)
		return failed(err), nil
	}

	image := p.resolver.Run(ctx, entry, entry.Title, source.Name)
	if image == nil {
		slog.Warn("No image available", "feed", source.Name, "title", entry.Title)
	}

	if p.options.DryRun {
		slog.Info("Dry run, not publishing",
			"feed", source.Name,
			"headline", article.Headline,
			"model", article.Model,
			"body_length", len(article.Body),
			"has_image", image != nil,
			"category", source.DefaultCategory,
			"tags", source.DefaultTags)
		return EntryResult{Outcome: OutcomeDryRun}, nil
	}

	result, err := p.publisher.Run(ctx, wordpress.PublishParams{
		Article:   article,
		Category:  source.DefaultCategory,
		Tags:      source.DefaultTags,
		Image:     image,
		SourceURL: entry.Link,
		Status:    source.PostStatus,
	})
	if err != nil {
		if ctx.Err() != nil {
			return EntryResult{}, ctx.Err()
		}
		slog.Error("Publish failed", "feed", source.Name, "title", article.Headline, "error", err)
		return failed(err), nil
	}

	if result == nil {
		slog.Warn("Publisher skipped entry as duplicate", "feed", source.Name, "key", key, "link", entry.Link)
		if p.options.LedgerDuplicates {
			if err := p.mark(ctx, key, entry, source, nil); err != nil {
				return EntryResult{}, err
			}
		}
		return EntryResult{Outcome: OutcomeDuplicate, Reason: "post exists for source URL"}, nil
	}

	if err := p.mark(ctx, key, entry, source, result); err != nil {
		return EntryResult{}, err
	}

	slog.Info("Task completed",
		"type", task.GetType(),
		"feed", source.Name,
		"duration", task.GetDuration(),
		"post_id", result.PostID,
		"url", result.PostURL)

	return EntryResult{
		Outcome: OutcomeProcessed,
		Post: &PublishedArticle{
			Title:    result.Title,
			URL:      result.PostURL,
			PostID:   result.PostID,
			FeedName: source.Name,
		},
	}, nil
}

// content returns the entry body, replaced by the extracted article text when
// the source asks for extraction and the feed body is too short to rewrite.
func (p *EntryProcessor) content(ctx context.Context, entry feed.Entry, source *feed.Source) string {
	body := entry.Body()
	if !source.ExtractContent || entry.Link == "" || p.pages == nil || p.extractor == nil {
		return body
	}

	text, err := rewriter.PlainText(body)
	if err == nil && utf8.RuneCountInString(text) >= rewriter.MinContentLength {
		return body
	}

	data, err := p.pages.Fetch(ctx, entry.Link)
	if err != nil {
		slog.Warn("Failed to fetch article page", "feed", source.Name, "url", entry.Link, "error", err)
		return body
	}

	extracted, err := p.extractor.Run(data, entry.Link)
	if err != nil {
		slog.Warn("Failed to extract article content", "feed", source.Name, "url", entry.Link, "error", err)
		return body
	}

	slog.Debug("Content extracted", "feed", source.Name, "url", entry.Link, "content_length", len(extracted))
	return extracted
}

func (p *EntryProcessor) mark(ctx context.Context, key string, entry feed.Entry, source *feed.Source, result *wordpress.Result) error {
	params := database.MarkParams{
		EntryKey:   key,
		FeedURL:    source.URL,
		EntryTitle: entry.Title,
		EntryLink:  entry.Link,
	}
	if result != nil {
		params.PostID = &result.PostID
		params.PostURL = &result.PostURL
	}

	if err := p.ledger.MarkProcessed(ctx, params); err != nil {
		return fmt.Errorf("failed to record processed entry: %w", err)
	}
	return nil
}

func failed(err error) EntryResult {
	reason := err.Error()
	if errors.Is(err, rewriter.ErrContentTooShort) {
		reason = "content too short"
	}
	return EntryResult{Outcome: OutcomeFailed, Reason: reason}
}
