package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"career-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retrying struct {
	base  Completer
	delay time.Duration
}

// WithRetry wraps base with a single ctx-aware retry on transient failures.
// Callers above the client (the orchestrator) never retry.
func WithRetry(base Completer, delay time.Duration) Completer {
	if base == nil {
		return nil
	}
	if delay <= 0 {
		delay = retryBaseDelay
	}
	return retrying{base: base, delay: delay}
}

func (r retrying) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := r.base.Complete(ctx, prompt)
	if err == nil || !ShouldRetry(err) {
		return resp, err
	}

	telemetry.Warn("llm.retry", map[string]any{"attempt": 1, "error": sanitizeError(err)})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.Complete(ctx, prompt)
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "http status 429") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}

func sanitizeError(err error) string {
	msg := err.Error()
	if len(msg) > 300 {
		msg = msg[:300]
	}
	return msg
}
