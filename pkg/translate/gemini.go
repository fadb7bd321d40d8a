package translate

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiEndpoint struct {
	modelName string
	client    *genai.Client
}

func NewGeminiEndpoint(ctx context.Context, apiKey, modelName string) (*GeminiEndpoint, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GeminiEndpoint{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *GeminiEndpoint) Name() string {
	return "gemini"
}

func (g *GeminiEndpoint) Translate(ctx context.Context, text, source, target string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0)

	res, err := model.GenerateContent(ctx, genai.Text(Prompt(source, target)+"\n\n"+text))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	part, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini API")
	}

	translated := strings.TrimSpace(string(part))
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}

func (g *GeminiEndpoint) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
