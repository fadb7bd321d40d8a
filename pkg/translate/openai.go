package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAIEndpoint struct {
	client *openai.Client
	model  string
}

// NewOpenAIEndpoint builds a chat completion backed endpoint. baseURL is
// optional and targets OpenAI compatible gateways.
func NewOpenAIEndpoint(apiKey, model, baseURL string) (*OpenAIEndpoint, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIEndpoint{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAIEndpoint) Name() string {
	return "openai"
}

func (o *OpenAIEndpoint) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: Prompt(source, target)},
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
			Temperature: 0,
		},
	)
	if err != nil {
		return "", fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from ChatGPT")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}
