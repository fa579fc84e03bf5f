package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	base := &scriptedCompleter{errs: []error{errors.New("openai http status 503: unavailable")}}
	c := WithRetry(base, time.Millisecond)

	got, err := c.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("expected success after retry: %v", err)
	}
	if got != "ok" || base.calls != 2 {
		t.Fatalf("expected 2 calls and ok, got %d calls and %q", base.calls, got)
	}
}

func TestWithRetryDoesNotRetryPermanent(t *testing.T) {
	base := &scriptedCompleter{errs: []error{errors.New("openai http status 400: content policy")}}
	c := WithRetry(base, time.Millisecond)

	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatalf("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("expected 1 call, got %d", base.calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	base := &scriptedCompleter{errs: []error{errors.New("connection reset by peer")}}
	c := WithRetry(base, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Complete(ctx, "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject("Here you go:\n```json\n{\"content\":\"hi\"}\n```")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"content":"hi"}` {
		t.Fatalf("unexpected payload %q", got)
	}
	if _, err := ExtractJSONObject("no json here"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}
