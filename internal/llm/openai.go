package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompleter calls any OpenAI-compatible chat completions endpoint
// (OpenAI, OpenRouter, local gateways) via the official SDK.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, baseURL, model string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, errors.New("llm: openai api key is required")
	}
	if model == "" {
		return nil, errors.New("llm: openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompleter{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAICompleter) Name() string { return "OpenAI:" + o.model }
func (o *OpenAICompleter) Close() error { return nil }

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
