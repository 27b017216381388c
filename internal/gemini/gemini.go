// Package gemini wraps the Google Gemini client used by the AI advisory
// endpoints. The client is constructed lazily on first use so that the
// application starts (and every non-AI endpoint works) without an API key.
package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"quantifi/internal/config"
)

// ErrNotConfigured is returned when no API key is present. The message
// deliberately names the environment variable so call sites surfacing it to
// users tell them exactly what to set.
var ErrNotConfigured = errors.New("GEMINI_API_KEY is not configured in environment variables")

// Client is a thin wrapper over a single Gemini generative model.
type Client struct {
	model *genai.GenerativeModel
}

// New constructs a client for the given API key and model name.
func New(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: genaiClient.GenerativeModel(modelName)}, nil
}

var (
	sharedMu sync.Mutex
	shared   *Client
)

// Shared returns the process-wide client, constructing it on first use.
// Construction fails with ErrNotConfigured when GEMINI_API_KEY is absent;
// that failure is not sticky, so setting the key and retrying works without
// a restart in tests and dev setups.
func Shared(ctx context.Context) (*Client, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}

	cfg := config.Get()
	client, err := New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	shared = client
	return shared, nil
}

// GenerateText sends the prompt and returns the concatenated text parts of
// the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned an empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
