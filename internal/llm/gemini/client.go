package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const defaultModel = "gemini-1.5-flash"

// Client implements llm.Completer on top of the langchaingo Google AI model.
type Client struct {
	model llms.Model
}

// NewClient builds a Gemini client. An empty model selects the default.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Client{model: m}, nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(m llms.Model) *Client {
	return &Client{model: m}
}

// Complete returns the raw model response for the prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return out, nil
}
