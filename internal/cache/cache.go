// Package cache deduplicates identical generation requests within a bounded
// time window. A miss is never an error: callers treat it as "not cached".
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Store is a best-effort key/value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Purge(ctx context.Context)
}

// Kind names a cached operation. Each kind owns its own bounded store.
type Kind string

const (
	KindResearch           Kind = "research"
	KindAnalysis           Kind = "analysis"
	KindJobExtraction      Kind = "job_extraction"
	KindInterviewQuestions Kind = "interview_questions"
)

// DefaultTTL returns the expiry used when Set is called without a ttl.
// Cover letters and outreach messages are personalized and have no kind.
func (k Kind) DefaultTTL() time.Duration {
	switch k {
	case KindResearch, KindJobExtraction:
		return 24 * time.Hour
	case KindAnalysis:
		return time.Hour
	case KindInterviewQuestions:
		return 6 * time.Hour
	default:
		return time.Hour
	}
}

// Kinds lists every cacheable operation.
func Kinds() []Kind {
	return []Kind{KindResearch, KindAnalysis, KindJobExtraction, KindInterviewQuestions}
}

// Key builds "<operation>::<k1>:<v1>|<k2>:<v2>" with keys sorted, so two
// requests with the same parameters collide regardless of map construction.
func Key(operation string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(operation)
	b.WriteString("::")
	for i, name := range names {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(params[name])
	}
	return b.String()
}
