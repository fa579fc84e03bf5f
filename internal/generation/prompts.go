package generation

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.txt"))

const (
	promptResearch    = "research_v1.txt"
	promptAnalysis    = "analysis_v1.txt"
	promptCoverLetter = "cover_letter_v1.txt"
	promptLinkedIn    = "linkedin_v1.txt"
	promptInterview   = "interview_v1.txt"
	promptExtractJob  = "extract_job_v1.txt"
)

const (
	maxResumeChars  = 12000
	maxPostingChars = 20000
)

type promptInput struct {
	Company         string
	CompanyURL      string
	ResumeText      string
	Job             JobPosting
	Profile         Profile
	Research        ResearchResult
	ResearchSummary string
	Tone            Tone
	Input           OutreachInput
	Existing        []InterviewQuestion
	RawText         string
	SourceURL       string
}

func renderPrompt(name string, in promptInput) (string, error) {
	in.ResumeText = truncate(in.ResumeText, maxResumeChars)
	in.RawText = truncate(in.RawText, maxPostingChars)
	in.Job.Description = truncate(in.Job.Description, maxPostingChars)

	var b strings.Builder
	if err := promptTemplates.ExecuteTemplate(&b, name, in); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
