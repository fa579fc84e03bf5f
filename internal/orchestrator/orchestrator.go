// Package orchestrator sequences the generation pipeline. It only transforms
// inputs into results through the backend; it never touches job storage or
// workspace state, and it never retries.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

// PlaceholderResearchSummary stands in for research that has not run yet so
// outreach generation never waits on it.
const PlaceholderResearchSummary = "No company research is available yet. Focus on the role and the candidate's background."

const (
	opInitial     = "generate_initial"
	opCoverLetter = "regenerate_cover_letter"
	opLinkedIn    = "generate_linkedin"
	opInterview   = "generate_interview"
	opExtractJob  = "extract_job"
)

// InitialResult is the composite outcome of GenerateInitial.
type InitialResult struct {
	Research    generation.ResearchResult
	Analysis    generation.AnalysisResult
	CoverLetter jobs.CoverLetter
}

type Orchestrator struct {
	backend generation.Backend
	tracer  trace.Tracer
}

// New builds an orchestrator over backend.
func New(backend generation.Backend) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		tracer:  telemetry.Tracer("career-backend/orchestrator"),
	}
}

// GenerateInitial researches the company and analyzes the résumé
// concurrently, then writes the cover letter from that exact research.
// Any failure fails the whole call.
func (o *Orchestrator) GenerateInitial(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, tone generation.Tone) (InitialResult, error) {
	if tone == "" {
		tone = generation.DefaultTone
	}

	var (
		research generation.ResearchResult
		analysis generation.AnalysisResult
		letter   string
	)

	g := newGraph(opInitial)
	g.add("research", nil, func(ctx context.Context) error {
		var err error
		research, err = o.backend.ResearchCompany(ctx, job.Company, job.CompanyURL)
		return err
	})
	g.add("analysis", nil, func(ctx context.Context) error {
		var err error
		analysis, err = o.backend.AnalyzeResume(ctx, resumeText, job, profile)
		return err
	})
	g.add("cover_letter", []string{"research"}, func(ctx context.Context) error {
		var err error
		letter, err = o.backend.GenerateCoverLetter(ctx, resumeText, job, research, tone, profile)
		return err
	})

	err := o.track(ctx, opInitial, func(ctx context.Context) error {
		return g.run(ctx, o.tracer)
	})
	if err != nil {
		return InitialResult{}, err
	}

	return InitialResult{
		Research: research,
		Analysis: analysis,
		CoverLetter: jobs.CoverLetter{
			Content:      letter,
			Tone:         tone,
			IsGenerating: false,
		},
	}, nil
}

// RegenerateCoverLetter writes a fresh letter from existing research.
func (o *Orchestrator) RegenerateCoverLetter(ctx context.Context, resumeText string, job generation.JobPosting, research generation.ResearchResult, tone generation.Tone, profile generation.Profile) (jobs.CoverLetter, error) {
	if tone == "" {
		tone = generation.DefaultTone
	}
	var letter string
	err := o.track(ctx, opCoverLetter, func(ctx context.Context) error {
		var err error
		letter, err = o.backend.GenerateCoverLetter(ctx, resumeText, job, research, tone, profile)
		return err
	})
	if err != nil {
		return jobs.CoverLetter{}, err
	}
	return jobs.CoverLetter{Content: letter, Tone: tone}, nil
}

// GenerateLinkedIn writes an outreach message. A blank research summary is
// replaced by a placeholder.
func (o *Orchestrator) GenerateLinkedIn(ctx context.Context, resumeText string, job generation.JobPosting, input generation.OutreachInput, researchSummary string) (jobs.LinkedInMessage, error) {
	if strings.TrimSpace(researchSummary) == "" {
		researchSummary = PlaceholderResearchSummary
	}
	var message string
	err := o.track(ctx, opLinkedIn, func(ctx context.Context) error {
		var err error
		message, err = o.backend.GenerateLinkedInMessage(ctx, resumeText, job, input, researchSummary)
		return err
	})
	if err != nil {
		return jobs.LinkedInMessage{}, err
	}
	return jobs.LinkedInMessage{Input: input, Message: message}, nil
}

// GenerateInterview appends newly generated questions to existing.
func (o *Orchestrator) GenerateInterview(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, existing []generation.InterviewQuestion) (jobs.InterviewPrep, error) {
	var fresh []generation.InterviewQuestion
	err := o.track(ctx, opInterview, func(ctx context.Context) error {
		var err error
		fresh, err = o.backend.GenerateInterviewQuestions(ctx, resumeText, job, existing, profile)
		return err
	})
	if err != nil {
		return jobs.InterviewPrep{}, err
	}

	questions := make([]generation.InterviewQuestion, 0, len(existing)+len(fresh))
	questions = append(questions, existing...)
	questions = append(questions, fresh...)
	return jobs.InterviewPrep{Questions: questions}, nil
}

// ExtractJob turns raw posting text into structured job details.
func (o *Orchestrator) ExtractJob(ctx context.Context, rawText, sourceURL string) (generation.JobDetails, error) {
	var details generation.JobDetails
	err := o.track(ctx, opExtractJob, func(ctx context.Context) error {
		var err error
		details, err = o.backend.ExtractJob(ctx, rawText, sourceURL)
		return err
	})
	return details, err
}

func (o *Orchestrator) track(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, op)
	defer span.End()

	start := time.Now()
	metrics.IncGenerationStarted()
	err := fn(ctx)
	elapsed := metrics.SinceMillis(start)
	metrics.ObserveGenerationDurationMs(elapsed)

	if err != nil {
		metrics.IncGenerationFailed()
		span.RecordError(err)
		telemetry.Error("generation.failed", map[string]any{
			"op":          op,
			"duration_ms": elapsed,
			"error":       err,
		})
		return err
	}
	metrics.IncGenerationCompleted()
	telemetry.Info("generation.completed", map[string]any{
		"op":          op,
		"duration_ms": elapsed,
	})
	return nil
}
