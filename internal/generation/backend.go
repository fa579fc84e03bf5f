// Package generation defines the contract with the text-generation backend
// and its LLM-backed implementation.
package generation

import "context"

// Backend performs the remote generation steps. Implementations may fail with
// transport or content-policy errors; callers only propagate them.
type Backend interface {
	ResearchCompany(ctx context.Context, company, companyURL string) (ResearchResult, error)
	AnalyzeResume(ctx context.Context, resumeText string, job JobPosting, profile Profile) (AnalysisResult, error)
	GenerateCoverLetter(ctx context.Context, resumeText string, job JobPosting, research ResearchResult, tone Tone, profile Profile) (string, error)
	GenerateLinkedInMessage(ctx context.Context, resumeText string, job JobPosting, input OutreachInput, researchSummary string) (string, error)
	GenerateInterviewQuestions(ctx context.Context, resumeText string, job JobPosting, existing []InterviewQuestion, profile Profile) ([]InterviewQuestion, error)
	ExtractJob(ctx context.Context, rawText, sourceURL string) (JobDetails, error)
}
