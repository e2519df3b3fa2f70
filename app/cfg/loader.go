package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Language models
	OpenAIAPIKey            string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	OpenAIModel             string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4.1-nano" description:"Primary rewrite model"`
	OpenAIFallbackModel     string `long:"openai-fallback-model" env:"OPENAI_FALLBACK_MODEL" default:"gpt-4o-mini" description:"Fallback rewrite model (empty to disable)"`
	OpenAILegacyMaxTokens   bool   `long:"openai-legacy-max-tokens" env:"OPENAI_LEGACY_MAX_TOKENS" description:"Send max_tokens instead of max_completion_tokens"`
	OpenAIDisableJSONFormat bool   `long:"openai-disable-json-format" env:"OPENAI_DISABLE_JSON_FORMAT" description:"Do not request the JSON response format"`
	AnthropicAPIKey         string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key (enables the Anthropic fallback)"`
	AnthropicModel          string `long:"anthropic-model" env:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-latest" description:"Anthropic fallback model"`

	// WordPress
	WordPressBaseURL     string `long:"wordpress-url" env:"WORDPRESS_BASE_URL" description:"WordPress site URL"`
	WordPressUsername    string `long:"wordpress-username" env:"WORDPRESS_USERNAME" description:"WordPress username"`
	WordPressAppPassword string `long:"wordpress-app-password" env:"WORDPRESS_APP_PASSWORD" description:"WordPress application password"`
	WordPressPostStatus  string `long:"wordpress-post-status" env:"WORDPRESS_POST_STATUS" default:"publish" description:"Default post status"`

	// Stock image providers
	PexelsAPIKey      string `long:"pexels-api-key" env:"PEXELS_API_KEY" description:"Pexels API key (optional)"`
	UnsplashAccessKey string `long:"unsplash-access-key" env:"UNSPLASH_ACCESS_KEY" description:"Unsplash access key (optional)"`

	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"data/processed.db" description:"Path to the processed entries database"`

	// Logging
	LogLevel  string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	LogFile   string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file"`

	// Email summary
	SMTPEmail         string `long:"smtp-email" env:"SMTP_EMAIL" description:"SMTP sender address"`
	SMTPPassword      string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	SMTPServer        string `long:"smtp-server" env:"SMTP_SERVER" default:"smtp.gmail.com" description:"SMTP server"`
	SMTPPort          int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP port"`
	NotificationEmail string `long:"notification-email" env:"NOTIFICATION_EMAIL" description:"Run summary recipient"`
	SiteName          string `long:"site-name" env:"SITE_NAME" default:"TippahNews" description:"Site name used in notifications"`

	// Status API
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the status API"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"rss-press/1.0" description:"User agent string for HTTP requests"`
	Timezone    string `long:"timezone" env:"TIMEZONE" default:"UTC" description:"Timezone for entry dates (e.g., UTC, America/Chicago)"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	ShowVersion bool   `long:"version" description:"Print version and exit"`
}

// Command is a subcommand registered on the settings parser.
type Command struct {
	Name  string
	Short string
	Long  string
	Data  flags.Commander
}

var (
	globalCfg *Cfg

	ErrNoCommand = errors.New("no command specified")
)

// Load parses args and the environment, stores the settings, then runs the
// selected command. It returns nil when help or the version was printed.
func Load(args []string, commands ...Command) error {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.SubcommandsOptional = true

	for _, command := range commands {
		if _, err := parser.AddCommand(command.Name, command.Short, command.Long, command.Data); err != nil {
			return fmt.Errorf("failed to register command %s: %w", command.Name, err)
		}
	}

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if raw.ShowVersion {
			fmt.Println(GetVersion())
			return nil
		}

		cfg, err := build(raw)
		if err != nil {
			return err
		}
		globalCfg = cfg

		if command == nil {
			parser.WriteHelp(os.Stderr)
			return ErrNoCommand
		}

		return command.Execute(args)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the loaded settings; used by tests and embedding callers.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func build(raw rawCfg) (*Cfg, error) {
	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", raw.Timezone, err)
	}

	return &Cfg{
		OpenAIAPIKey:          raw.OpenAIAPIKey,
		OpenAIModel:           raw.OpenAIModel,
		OpenAIFallbackModel:   raw.OpenAIFallbackModel,
		OpenAILegacyMaxTokens: raw.OpenAILegacyMaxTokens,
		OpenAIJSONResponse:    !raw.OpenAIDisableJSONFormat,
		AnthropicAPIKey:       raw.AnthropicAPIKey,
		AnthropicModel:        raw.AnthropicModel,
		WordPressBaseURL:      strings.TrimRight(raw.WordPressBaseURL, "/"),
		WordPressUsername:     raw.WordPressUsername,
		WordPressAppPassword:  raw.WordPressAppPassword,
		WordPressPostStatus:   raw.WordPressPostStatus,
		PexelsAPIKey:          raw.PexelsAPIKey,
		UnsplashAccessKey:     raw.UnsplashAccessKey,
		DBPath:                raw.DBPath,
		LogLevel:              raw.LogLevel,
		LogFormat:             raw.LogFormat,
		LogFile:               raw.LogFile,
		SMTPEmail:             raw.SMTPEmail,
		SMTPPassword:          raw.SMTPPassword,
		SMTPServer:            raw.SMTPServer,
		SMTPPort:              raw.SMTPPort,
		NotificationEmail:     raw.NotificationEmail,
		SiteName:              raw.SiteName,
		Port:                  raw.Port,
		BaseUrl:               strings.TrimRight(raw.BaseUrl, "/"),
		APIAccessKey:          raw.APIAccessKey,
		UserAgent:             raw.UserAgent,
		Timezone:              raw.Timezone,
		Location:              loc,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}, nil
}

// ValidateRun checks the settings a pipeline run needs. Publishing
// credentials are only required when the run will publish.
func (c *Cfg) ValidateRun(dryRun bool) error {
	var missing []string

	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if !dryRun {
		if c.WordPressBaseURL == "" {
			missing = append(missing, "WORDPRESS_BASE_URL")
		}
		if c.WordPressUsername == "" {
			missing = append(missing, "WORDPRESS_USERNAME")
		}
		if c.WordPressAppPassword == "" {
			missing = append(missing, "WORDPRESS_APP_PASSWORD")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return nil
}

// NotificationsEnabled reports whether the email summary can be sent.
func (c *Cfg) NotificationsEnabled() bool {
	return c.SMTPEmail != "" && c.SMTPPassword != "" && c.NotificationEmail != ""
}
