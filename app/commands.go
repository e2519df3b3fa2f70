package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/lysyi3m/rss-press/app/api"
	"github.com/lysyi3m/rss-press/app/cfg"
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/httpclient"
	"github.com/lysyi3m/rss-press/app/images"
	"github.com/lysyi3m/rss-press/app/notify"
	"github.com/lysyi3m/rss-press/app/rewriter"
	"github.com/lysyi3m/rss-press/app/tasks"
	"github.com/lysyi3m/rss-press/app/wordpress"
)

const (
	httpTimeout      = 30 * time.Second
	wordpressTimeout = 60 * time.Second
	httpMaxRetries   = 2
)

// errRunFailed marks a run that processed and skipped nothing but saw errors.
var errRunFailed = errors.New("run failed")

type RunCommand struct {
	Config           string `short:"c" long:"config" default:"feeds.yaml" description:"Path to feeds configuration file"`
	DryRun           bool   `short:"n" long:"dry-run" description:"Process feeds without publishing to WordPress"`
	SingleFeed       string `short:"f" long:"single-feed" description:"Process only the feed with this name"`
	Hours            int    `short:"H" long:"hours" default:"48" description:"Only entries newer than this many hours are considered"`
	LedgerDuplicates bool   `long:"ledger-duplicates" description:"Record entries skipped as already published on the site"`
}

func (c *RunCommand) Execute(_ []string) error {
	config := cfg.Get()

	closeLog, err := setupLogging(config)
	if err != nil {
		return err
	}
	defer closeLog()

	slog.Info("Starting rss-press", "version", config.Version, "dry_run", c.DryRun, "config", c.Config)

	if c.Hours <= 0 {
		return fmt.Errorf("hours must be positive, got %d", c.Hours)
	}

	if err := config.ValidateRun(c.DryRun); err != nil {
		return err
	}

	sourceList := feed.NewSourceList(c.Config)
	if err := sourceList.Run(); err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}

	sources := sourceList.GetSources()
	if c.SingleFeed != "" {
		source, err := sourceList.GetSource(c.SingleFeed)
		if err != nil {
			return err
		}
		sources = []*feed.Source{source}
	}

	slog.Info("Feeds loaded", "count", len(sources))

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := buildRunner(config, db, c.DryRun, c.LedgerDuplicates, time.Duration(c.Hours)*time.Hour)

	stats, err := runner.Run(ctx, sources)
	if err != nil {
		return err
	}

	if !c.DryRun && len(stats.Published) > 0 && config.NotificationsEnabled() {
		mailer := notify.NewMailer(notify.Settings{
			Server:   config.SMTPServer,
			Port:     config.SMTPPort,
			Username: config.SMTPEmail,
			Password: config.SMTPPassword,
			To:       config.NotificationEmail,
			SiteName: config.SiteName,
		})
		if err := mailer.Send(stats); err != nil {
			slog.Error("Failed to send run summary", "error", err)
		}
	}

	if stats.Failed() {
		slog.Error("Run failed", "errors", stats.Errors)
		return errRunFailed
	}

	return nil
}

func buildRunner(config *cfg.Cfg, db *database.DB, dryRun, ledgerDuplicates bool, window time.Duration) *tasks.Runner {
	client := httpclient.New(httpTimeout, config.UserAgent, httpMaxRetries)

	fetcher := feed.NewFetcher(client, feed.NewParser(), httpTimeout)
	selector := feed.NewSelector(config.Location)

	var providers []images.Provider
	if config.PexelsAPIKey != "" {
		providers = append(providers, images.NewPexelsClient(client, config.PexelsAPIKey))
	}
	if config.UnsplashAccessKey != "" {
		providers = append(providers, images.NewUnsplashClient(client, config.UnsplashAccessKey))
	}
	resolver := images.NewResolver(images.NewDownloader(client), providers...)

	var publisher tasks.Publisher
	if !dryRun {
		wpClient := wordpress.NewClient(httpclient.New(wordpressTimeout, config.UserAgent, httpMaxRetries),
			config.WordPressBaseURL, config.WordPressUsername, config.WordPressAppPassword)
		publisher = wordpress.NewPublisher(wpClient, config.WordPressPostStatus)
	}

	processor := tasks.NewEntryProcessor(
		database.NewLedgerRepository(db),
		selector,
		rewriter.NewRewriter(buildModels(config)...),
		resolver,
		publisher,
		fetcher,
		feed.NewContentExtractor(),
		tasks.Options{DryRun: dryRun, LedgerDuplicates: ledgerDuplicates},
	)

	return tasks.NewRunner(fetcher, feed.NewFilterer(), selector, processor, window)
}

// buildModels returns the rewrite chain: the primary OpenAI model, then the
// OpenAI fallback, then Anthropic when its key is set.
func buildModels(config *cfg.Cfg) []rewriter.Model {
	openAI := func(model string) rewriter.Model {
		return rewriter.NewOpenAIModel(rewriter.OpenAIConfig{
			APIKey:          config.OpenAIAPIKey,
			Model:           model,
			LegacyMaxTokens: config.OpenAILegacyMaxTokens,
			JSONResponse:    config.OpenAIJSONResponse,
		})
	}

	models := []rewriter.Model{openAI(config.OpenAIModel)}

	if config.OpenAIFallbackModel != "" && config.OpenAIFallbackModel != config.OpenAIModel {
		models = append(models, openAI(config.OpenAIFallbackModel))
	}

	if config.AnthropicAPIKey != "" {
		models = append(models, rewriter.NewAnthropicModel(rewriter.AnthropicConfig{
			APIKey: config.AnthropicAPIKey,
			Model:  config.AnthropicModel,
		}))
	}

	return models
}

type StatusCommand struct {
	Limit int    `short:"l" long:"limit" default:"10" description:"Number of recent entries to show"`
	Feed  string `long:"feed" description:"Only show entries of this feed URL"`
}

func (c *StatusCommand) Execute(_ []string) error {
	config := cfg.Get()

	closeLog, err := setupLogging(config)
	if err != nil {
		return err
	}
	defer closeLog()

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ledger := database.NewLedgerRepository(db)
	ctx := context.Background()

	count, err := ledger.Count(ctx, c.Feed)
	if err != nil {
		return err
	}

	records, err := ledger.Recent(ctx, c.Limit, c.Feed)
	if err != nil {
		return err
	}

	return printStatus(os.Stdout, count, records, config.Location)
}

func printStatus(w io.Writer, count int, records []database.Record, loc *time.Location) error {
	fmt.Fprintf(w, "Processed entries: %d\n", count)

	if len(records) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nRecent entries:")

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		postURL := "-"
		if record.PostURL != nil && *record.PostURL != "" {
			postURL = *record.PostURL
		}
		rows = append(rows, []string{
			truncate(cmp.Or(record.EntryTitle, "(untitled)"), 60),
			record.ProcessedAt.In(loc).Format("2006-01-02 15:04"),
			postURL,
		})
	}

	table.Header([]string{"Title", "Processed", "Post URL"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build status table: %w", err)
	}

	return table.Render()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

type ClearCommand struct {
	Yes bool `short:"y" long:"yes" description:"Confirm without prompting"`
}

func (c *ClearCommand) Execute(_ []string) error {
	config := cfg.Get()

	closeLog, err := setupLogging(config)
	if err != nil {
		return err
	}
	defer closeLog()

	if !c.Yes && !confirm(os.Stdin, os.Stdout, "Are you sure you want to clear all processed entries?") {
		fmt.Println("Cancelled.")
		return nil
	}

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	removed, err := database.NewLedgerRepository(db).Clear(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Cleared %d entries from database.\n", removed)
	return nil
}

func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", question)

	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

type ServeCommand struct {
	Config string `short:"c" long:"config" default:"feeds.yaml" description:"Path to feeds configuration file (optional)"`
}

func (c *ServeCommand) Execute(_ []string) error {
	config := cfg.Get()

	closeLog, err := setupLogging(config)
	if err != nil {
		return err
	}
	defer closeLog()

	var sources []feed.Source
	sourceList := feed.NewSourceList(c.Config)
	if err := sourceList.Run(); err != nil {
		slog.Warn("Feed configuration not loaded", "config", c.Config, "error", err)
	} else {
		for _, source := range sourceList.GetSources() {
			sources = append(sources, *source)
		}
	}

	db, err := database.NewConnection(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	handler := api.NewHandler(database.NewLedgerRepository(db), channelFor(config), sources)
	server := api.NewServer(handler, config.APIAccessKey, config.Version)

	httpServer := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case serveErr = <-serverErrChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}

func channelFor(config *cfg.Cfg) feed.Channel {
	baseURL := config.BaseUrl
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", config.Port)
	}

	return feed.Channel{
		Title:       config.SiteName,
		Link:        config.WordPressBaseURL,
		Description: fmt.Sprintf("Articles recently published to %s", config.SiteName),
		SelfLink:    baseURL + "/feed.xml",
		Version:     config.Version,
	}
}
