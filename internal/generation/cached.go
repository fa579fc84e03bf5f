package generation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"career-backend/internal/cache"
	"career-backend/internal/shared/metrics"
)

// Cached decorates a Backend with the response cache. Research, analysis,
// interview questions and job extraction are cached; cover letters and
// outreach messages always go to the wrapped backend.
type Cached struct {
	next   Backend
	caches *cache.Registry
}

// NewCached wraps next. A nil registry disables caching.
func NewCached(next Backend, caches *cache.Registry) *Cached {
	return &Cached{next: next, caches: caches}
}

func (c *Cached) ResearchCompany(ctx context.Context, company, companyURL string) (ResearchResult, error) {
	key := cache.Key("researchCompany", map[string]string{
		"company": normalize(company),
		"url":     normalize(companyURL),
	})
	var out ResearchResult
	if c.lookup(ctx, cache.KindResearch, key, &out) {
		return out, nil
	}
	out, err := c.next.ResearchCompany(ctx, company, companyURL)
	if err != nil {
		return ResearchResult{}, err
	}
	c.store(ctx, cache.KindResearch, key, out)
	return out, nil
}

func (c *Cached) AnalyzeResume(ctx context.Context, resumeText string, job JobPosting, profile Profile) (AnalysisResult, error) {
	key := cache.Key("analyzeResume", map[string]string{
		"resume":  digest(resumeText),
		"job":     digest(job.Title, job.Company, job.Description),
		"profile": digest(profile.LinkedIn, profile.GitHub, profile.Portfolio, profile.Website),
	})
	var out AnalysisResult
	if c.lookup(ctx, cache.KindAnalysis, key, &out) {
		return out, nil
	}
	out, err := c.next.AnalyzeResume(ctx, resumeText, job, profile)
	if err != nil {
		return AnalysisResult{}, err
	}
	c.store(ctx, cache.KindAnalysis, key, out)
	return out, nil
}

func (c *Cached) GenerateCoverLetter(ctx context.Context, resumeText string, job JobPosting, research ResearchResult, tone Tone, profile Profile) (string, error) {
	return c.next.GenerateCoverLetter(ctx, resumeText, job, research, tone, profile)
}

func (c *Cached) GenerateLinkedInMessage(ctx context.Context, resumeText string, job JobPosting, input OutreachInput, researchSummary string) (string, error) {
	return c.next.GenerateLinkedInMessage(ctx, resumeText, job, input, researchSummary)
}

func (c *Cached) GenerateInterviewQuestions(ctx context.Context, resumeText string, job JobPosting, existing []InterviewQuestion, profile Profile) ([]InterviewQuestion, error) {
	asked := make([]string, 0, len(existing))
	for _, q := range existing {
		asked = append(asked, q.Question)
	}
	key := cache.Key("generateInterviewQuestions", map[string]string{
		"resume":   digest(resumeText),
		"job":      digest(job.Title, job.Company, job.Description),
		"existing": digest(asked...),
	})
	var out []InterviewQuestion
	if c.lookup(ctx, cache.KindInterviewQuestions, key, &out) {
		return out, nil
	}
	out, err := c.next.GenerateInterviewQuestions(ctx, resumeText, job, existing, profile)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cache.KindInterviewQuestions, key, out)
	return out, nil
}

func (c *Cached) ExtractJob(ctx context.Context, rawText, sourceURL string) (JobDetails, error) {
	key := cache.Key("extractJob", map[string]string{
		"text": digest(rawText),
		"url":  normalize(sourceURL),
	})
	var out JobDetails
	if c.lookup(ctx, cache.KindJobExtraction, key, &out) {
		return out, nil
	}
	out, err := c.next.ExtractJob(ctx, rawText, sourceURL)
	if err != nil {
		return JobDetails{}, err
	}
	c.store(ctx, cache.KindJobExtraction, key, out)
	return out, nil
}

func (c *Cached) lookup(ctx context.Context, kind cache.Kind, key string, dest any) bool {
	store := c.caches.For(kind)
	if store == nil {
		return false
	}
	raw, ok := store.Get(ctx, key)
	if !ok {
		metrics.IncCacheMiss()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.IncCacheMiss()
		return false
	}
	metrics.IncCacheHit()
	return true
}

func (c *Cached) store(ctx context.Context, kind cache.Kind, key string, value any) {
	store := c.caches.For(kind)
	if store == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	store.Set(ctx, key, raw, 0)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// digest keeps long inputs out of cache keys.
func digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.TrimSpace(p)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
