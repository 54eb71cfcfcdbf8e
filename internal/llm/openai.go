package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openaiDefaultModel = "gpt-4o"

func init() {
	Register("openai", func(cfg Config) Provider {
		return newOpenAI(cfg)
	})
}

type openaiProvider struct {
	client openai.Client
	model  string
}

func newOpenAI(cfg Config) *openaiProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = openaiDefaultModel
	}
	return &openaiProvider{client: openai.NewClient(opts...), model: model}
}

func (p *openaiProvider) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", &APIError{Provider: "openai", StatusCode: apierr.StatusCode, Err: err}
		}
		return "", &APIError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &APIError{Provider: "openai", Err: errors.New("empty response")}
	}
	return resp.Choices[0].Message.Content, nil
}
