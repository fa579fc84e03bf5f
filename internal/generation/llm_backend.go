package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"career-backend/internal/llm"
)

// LLMBackend implements Backend by prompting a single completer for JSON.
type LLMBackend struct {
	completer llm.Completer
}

// NewLLMBackend wraps completer. Retry behavior belongs to the completer.
func NewLLMBackend(completer llm.Completer) *LLMBackend {
	if completer == nil {
		completer = llm.PlaceholderClient{}
	}
	return &LLMBackend{completer: completer}
}

type textPayload struct {
	Content string `json:"content"`
}

type questionsPayload struct {
	Questions []InterviewQuestion `json:"questions"`
}

func (b *LLMBackend) ResearchCompany(ctx context.Context, company, companyURL string) (ResearchResult, error) {
	if strings.TrimSpace(company) == "" {
		return ResearchResult{}, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	var out ResearchResult
	if err := b.completeJSON(ctx, promptResearch, promptInput{Company: company, CompanyURL: companyURL}, &out); err != nil {
		return ResearchResult{}, err
	}
	if out.Sources == nil {
		out.Sources = []Source{}
	}
	return out, nil
}

func (b *LLMBackend) AnalyzeResume(ctx context.Context, resumeText string, job JobPosting, profile Profile) (AnalysisResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return AnalysisResult{}, fmt.Errorf("%w: resume text is required", ErrInvalidInput)
	}
	var out AnalysisResult
	if err := b.completeJSON(ctx, promptAnalysis, promptInput{ResumeText: resumeText, Job: job, Profile: profile}, &out); err != nil {
		return AnalysisResult{}, err
	}
	out.MatchScore = clampScore(out.MatchScore)
	return out, nil
}

func (b *LLMBackend) GenerateCoverLetter(ctx context.Context, resumeText string, job JobPosting, research ResearchResult, tone Tone, profile Profile) (string, error) {
	if tone == "" {
		tone = DefaultTone
	}
	return b.completeText(ctx, promptCoverLetter, promptInput{
		ResumeText: resumeText,
		Job:        job,
		Research:   research,
		Tone:       tone,
		Profile:    profile,
	})
}

func (b *LLMBackend) GenerateLinkedInMessage(ctx context.Context, resumeText string, job JobPosting, input OutreachInput, researchSummary string) (string, error) {
	return b.completeText(ctx, promptLinkedIn, promptInput{
		ResumeText:      resumeText,
		Job:             job,
		Input:           input,
		ResearchSummary: researchSummary,
	})
}

func (b *LLMBackend) GenerateInterviewQuestions(ctx context.Context, resumeText string, job JobPosting, existing []InterviewQuestion, profile Profile) ([]InterviewQuestion, error) {
	var out questionsPayload
	if err := b.completeJSON(ctx, promptInterview, promptInput{ResumeText: resumeText, Job: job, Existing: existing, Profile: profile}, &out); err != nil {
		return nil, err
	}
	questions := make([]InterviewQuestion, 0, len(out.Questions))
	for _, q := range out.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (b *LLMBackend) ExtractJob(ctx context.Context, rawText, sourceURL string) (JobDetails, error) {
	if strings.TrimSpace(rawText) == "" {
		return JobDetails{}, fmt.Errorf("%w: posting text is required", ErrInvalidInput)
	}
	var out JobDetails
	if err := b.completeJSON(ctx, promptExtractJob, promptInput{RawText: rawText, SourceURL: sourceURL}, &out); err != nil {
		return JobDetails{}, err
	}
	if strings.TrimSpace(out.Title) == "" && strings.TrimSpace(out.Company) == "" {
		return JobDetails{}, fmt.Errorf("%w: no title or company found", ErrInvalidOutput)
	}
	return out, nil
}

func (b *LLMBackend) completeText(ctx context.Context, name string, in promptInput) (string, error) {
	var out textPayload
	if err := b.completeJSON(ctx, name, in, &out); err != nil {
		return "", err
	}
	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func (b *LLMBackend) completeJSON(ctx context.Context, name string, in promptInput, dest any) error {
	prompt, err := renderPrompt(name, in)
	if err != nil {
		return err
	}
	raw, err := b.completer.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyResponse
	}
	payload, err := llm.ExtractJSONObject(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
