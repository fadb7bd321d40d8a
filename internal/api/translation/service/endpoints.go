package translationService

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"MoodLingo/pkg/translate"
	"github.com/sirupsen/logrus"
)

const (
	geminiToken = "gemini"
	openAIToken = "openai"
)

var errEmptyResult = errors.New("empty translation")

// DefaultEndpoints is the Google host order used when none is configured.
var DefaultEndpoints = []string{
	"translate.google.com",
	"translate.googleapis.com",
	"clients5.google.com",
	"translate.google.co.in",
}

type EndpointsConfig struct {
	Tokens        []string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	HTTPClient    *http.Client
}

// BuildEndpoints maps every configured token to an endpoint, keeping the
// order. LLM tokens without credentials are skipped.
func BuildEndpoints(ctx context.Context, cfg EndpointsConfig, log *logrus.Logger) []Endpoint {
	tokens := cfg.Tokens
	if len(tokens) == 0 {
		tokens = DefaultEndpoints
	}

	endpoints := make([]Endpoint, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		switch strings.ToLower(token) {
		case geminiToken:
			ep, err := translate.NewGeminiEndpoint(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				log.Warnf("Skipping gemini translation endpoint: %v", err)
				continue
			}
			endpoints = append(endpoints, ep)
		case openAIToken:
			ep, err := translate.NewOpenAIEndpoint(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
			if err != nil {
				log.Warnf("Skipping openai translation endpoint: %v", err)
				continue
			}
			endpoints = append(endpoints, ep)
		default:
			endpoints = append(endpoints, translate.NewGoogleEndpoint(token, cfg.HTTPClient))
		}
	}

	return endpoints
}
