package translate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const googlePath = "/translate_a/single"

// GoogleEndpoint calls the public web translate API on one host.
type GoogleEndpoint struct {
	host    string
	baseURL string
	client  *http.Client
}

// NewGoogleEndpoint accepts a bare host such as translate.google.com, or a
// full base URL which is then used as-is.
func NewGoogleEndpoint(host string, client *http.Client) *GoogleEndpoint {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	baseURL := strings.TrimRight(host, "/")
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}

	return &GoogleEndpoint{
		host:    host,
		baseURL: baseURL,
		client:  client,
	}
}

func (g *GoogleEndpoint) Name() string {
	return g.host
}

func (g *GoogleEndpoint) Translate(ctx context.Context, text, source, target string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+googlePath+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", g.host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", g.host, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s responded with status %d", g.host, resp.StatusCode)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated part of every segment in
// [[["translated","source",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var payload []interface{}
	if err := jsoniter.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if len(payload) == 0 {
		return "", ErrEmptyTranslation
	}

	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translation payload")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}

	translated := strings.TrimSpace(sb.String())
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}
