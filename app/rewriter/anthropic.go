package rewriter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicModel struct {
	client *anthropic.Client
	config AnthropicConfig
}

func NewAnthropicModel(config AnthropicConfig) *AnthropicModel {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithRequestTimeout(90 * time.Second),
		option.WithMaxRetries(2),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicModel{
		client: &client,
		config: config,
	}
}

func (m *AnthropicModel) Name() string {
	return m.config.Model
}

func (m *AnthropicModel) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := m.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(m.config.Model),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(defaultTemperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	return text.String(), nil
}
