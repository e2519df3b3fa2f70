package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lysyi3m/rss-press/app/cfg"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	commands := []cfg.Command{
		{
			Name:  "run",
			Short: "Publish new feed entries",
			Long:  "Fetch the configured feeds, rewrite recent entries and publish them to WordPress",
			Data:  &RunCommand{},
		},
		{
			Name:  "status",
			Short: "Show processed entries",
			Long:  "Print the number of processed entries and the most recent records",
			Data:  &StatusCommand{},
		},
		{
			Name:  "clear-db",
			Short: "Clear processed entries",
			Long:  "Remove every record from the processed entries database",
			Data:  &ClearCommand{},
		},
		{
			Name:  "serve",
			Short: "Start the status API",
			Long:  "Serve health, statistics and an RSS feed of published posts over HTTP",
			Data:  &ServeCommand{},
		},
	}

	// go-flags already printed the error
	if err := cfg.Load(os.Args[1:], commands...); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger. The returned function closes
// the log file, if any.
func setupLogging(c *cfg.Cfg) (func(), error) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", c.LogLevel, err)
	}
	if c.Debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}

	if c.LogFile != "" {
		file, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closeFn = func() { file.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))

	return closeFn, nil
}
