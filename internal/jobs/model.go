package jobs

import (
	"time"

	"career-backend/internal/generation"
)

// Job is an application target owned by one user, with its generated outputs.
type Job struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Description    string    `json:"description"`
	CompanyURL     string    `json:"companyUrl,omitempty"`
	SourceURL      string    `json:"sourceUrl,omitempty"`
	LinkedResumeID string    `json:"linkedResumeId,omitempty"`
	Outputs        *Outputs  `json:"outputs,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Posting returns the fields prompts need.
func (j Job) Posting() generation.JobPosting {
	return generation.JobPosting{
		Title:       j.Title,
		Company:     j.Company,
		Description: j.Description,
		CompanyURL:  j.CompanyURL,
	}
}

// Clone returns a copy that shares no output slots with j.
func (j Job) Clone() Job {
	if j.Outputs != nil {
		out := j.Outputs.Clone()
		j.Outputs = &out
	}
	return j
}

type CoverLetter struct {
	Content      string          `json:"content"`
	Tone         generation.Tone `json:"tone"`
	IsGenerating bool            `json:"isGenerating"`
}

type LinkedInMessage struct {
	Input        generation.OutreachInput `json:"input"`
	Message      string                   `json:"message"`
	IsGenerating bool                     `json:"isGenerating"`
}

type InterviewPrep struct {
	Questions    []generation.InterviewQuestion `json:"questions"`
	IsGenerating bool                           `json:"isGenerating"`
}
