package rewriter

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

type OpenAIConfig struct {
	APIKey string
	Model  string
	// LegacyMaxTokens sends max_tokens instead of max_completion_tokens.
	LegacyMaxTokens bool
	// JSONResponse requests the json_object response format.
	JSONResponse bool
	BaseURL      string
}

type OpenAIModel struct {
	client *openai.Client
	config OpenAIConfig
}

func NewOpenAIModel(config OpenAIConfig) *OpenAIModel {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithRequestTimeout(90 * time.Second),
		option.WithMaxRetries(2),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIModel{
		client: &client,
		config: config,
	}
}

func (m *OpenAIModel) Name() string {
	return m.config.Model
}

func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(defaultTemperature),
	}

	if m.config.LegacyMaxTokens {
		params.MaxTokens = openai.Int(defaultMaxTokens)
	} else {
		params.MaxCompletionTokens = openai.Int(defaultMaxTokens)
	}

	if m.config.JSONResponse {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
