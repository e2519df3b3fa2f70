package cfg

import "time"

type Cfg struct {
	// Language models
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIFallbackModel   string
	OpenAILegacyMaxTokens bool
	OpenAIJSONResponse    bool
	AnthropicAPIKey       string
	AnthropicModel        string

	// WordPress
	WordPressBaseURL     string
	WordPressUsername    string
	WordPressAppPassword string
	WordPressPostStatus  string

	// Stock image providers
	PexelsAPIKey      string
	UnsplashAccessKey string

	// Storage
	DBPath string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Email summary
	SMTPEmail         string
	SMTPPassword      string
	SMTPServer        string
	SMTPPort          int
	NotificationEmail string
	SiteName          string

	// Status API
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}
