package session

import (
	"career-backend/internal/generation"
	"career-backend/internal/jobs"
)

type createJobRequest struct {
	Title          string `json:"title"`
	Company        string `json:"company"`
	Description    string `json:"description"`
	CompanyURL     string `json:"companyUrl"`
	SourceURL      string `json:"sourceUrl"`
	LinkedResumeID string `json:"linkedResumeId"`
}

func (r createJobRequest) toJob() jobs.Job {
	return jobs.Job{
		Title:          r.Title,
		Company:        r.Company,
		Description:    r.Description,
		CompanyURL:     r.CompanyURL,
		SourceURL:      r.SourceURL,
		LinkedResumeID: r.LinkedResumeID,
	}
}

type resumeRequest struct {
	Text     string `json:"text"`
	ResumeID string `json:"resumeId"`
}

type generateRequest struct {
	Tone    string             `json:"tone"`
	Profile generation.Profile `json:"profile"`
}

type linkedInRequest struct {
	Input *generation.OutreachInput `json:"input"`
}

type interviewRequest struct {
	Profile generation.Profile `json:"profile"`
}

type extractRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// JobsResponse lists the actor's jobs with any unreconciled write failures.
type JobsResponse struct {
	Jobs        []jobs.Job        `json:"jobs"`
	ActiveJobID string            `json:"activeJobId"`
	Divergences []jobs.Divergence `json:"divergences,omitempty"`
}

// CreateJobResponse carries the new job and the workspace bound to it.
type CreateJobResponse struct {
	Job  jobs.Job `json:"job"`
	View View     `json:"view"`
}
