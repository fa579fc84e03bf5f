package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Completer sends a single prompt to a text-generation provider and returns
// the raw model output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder completer.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// ExtractJSONObject returns the first well-formed JSON object in raw, tolerating
// prose or code fences around it.
func ExtractJSONObject(raw string) (string, error) {
	payload := strings.TrimSpace(raw)
	if payload == "" {
		return "", errors.New("empty llm response")
	}
	if json.Valid([]byte(payload)) {
		return payload, nil
	}

	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no json object found")
	}

	candidate := payload[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", errors.New("invalid json object")
	}
	return candidate, nil
}
