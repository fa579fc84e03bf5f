// Package workspace holds the pure transitions between a job's stored outputs
// and the live, single-job view a session edits. Nothing here performs I/O.
package workspace

import (
	"strings"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
)

// Status is the coarse progress of a workspace. It is always derived.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// State is the live view of at most one job. An empty JobID is the Empty
// state.
type State struct {
	JobID         string                     `json:"jobId"`
	ResumeText    string                     `json:"resumeText"`
	Research      *generation.ResearchResult `json:"research"`
	Analysis      *generation.AnalysisResult `json:"analysis"`
	IsAnalyzing   bool                       `json:"isAnalyzing"`
	CoverLetter   jobs.CoverLetter           `json:"coverLetter"`
	LinkedIn      jobs.LinkedInMessage       `json:"linkedIn"`
	InterviewPrep jobs.InterviewPrep         `json:"interviewPrep"`
	// Generated marks the slots the bound job holds, blank ones included.
	Generated Slots `json:"generated"`
}

// Slots flags output slots by name.
type Slots struct {
	CoverLetter   bool `json:"coverLetter"`
	LinkedIn      bool `json:"linkedIn"`
	InterviewPrep bool `json:"interviewPrep"`
}

// Defaults fill slots a job has not generated yet.
type Defaults struct {
	Tone generation.Tone
	// OutreachInput is what the user last typed into the outreach form.
	OutreachInput generation.OutreachInput
	ResumeText    string
}

// SwitchResult pairs the outgoing snapshot with the incoming state.
type SwitchResult struct {
	OldJobID string
	// Snapshot is nil when there was no outgoing job.
	Snapshot *jobs.Outputs
	Next     State
}

// IsEmpty reports whether no job is bound.
func (s State) IsEmpty() bool {
	return s.JobID == ""
}

// Status derives the coarse status from content and in-progress flags.
func (s State) Status() Status {
	return DeriveStatus(s)
}

// DeriveStatus is Completed once a cover letter has content, InProgress while
// any module is generating, and Idle otherwise.
func DeriveStatus(s State) Status {
	if strings.TrimSpace(s.CoverLetter.Content) != "" {
		return StatusCompleted
	}
	if s.IsAnalyzing || s.CoverLetter.IsGenerating || s.LinkedIn.IsGenerating || s.InterviewPrep.IsGenerating {
		return StatusInProgress
	}
	return StatusIdle
}

// JobStatus derives the status of a stored job without hydrating it.
func JobStatus(job jobs.Job) Status {
	if job.Outputs != nil && job.Outputs.CoverLetter != nil && strings.TrimSpace(job.Outputs.CoverLetter.Content) != "" {
		return StatusCompleted
	}
	return StatusIdle
}

// Clear returns the Empty state. Only the outreach form input and the bound
// résumé text carry over.
func Clear(d Defaults) State {
	return State{
		ResumeText:    d.ResumeText,
		CoverLetter:   jobs.CoverLetter{Tone: defaultTone(d.Tone)},
		LinkedIn:      jobs.LinkedInMessage{Input: d.OutreachInput},
		InterviewPrep: jobs.InterviewPrep{Questions: []generation.InterviewQuestion{}},
	}
}

// Hydrate builds the state for job from its stored outputs, falling back to
// defaults per absent slot. Progress flags always start cleared.
func Hydrate(job jobs.Job, d Defaults) State {
	s := Clear(d)
	s.JobID = job.ID
	if job.Outputs == nil {
		return s
	}

	o := job.Outputs.Clone()
	s.Research = o.Research
	s.Analysis = o.Analysis
	if o.CoverLetter != nil {
		s.CoverLetter = *o.CoverLetter
		if s.CoverLetter.Tone == "" {
			s.CoverLetter.Tone = defaultTone(d.Tone)
		}
		s.CoverLetter.IsGenerating = false
		s.Generated.CoverLetter = true
	}
	if o.LinkedIn != nil {
		s.LinkedIn = *o.LinkedIn
		if s.LinkedIn.Input.IsZero() {
			s.LinkedIn.Input = d.OutreachInput
		}
		s.LinkedIn.IsGenerating = false
		s.Generated.LinkedIn = true
	}
	if o.InterviewPrep != nil {
		s.InterviewPrep = *o.InterviewPrep
		if s.InterviewPrep.Questions == nil {
			s.InterviewPrep.Questions = []generation.InterviewQuestion{}
		}
		s.InterviewPrep.IsGenerating = false
		s.Generated.InterviewPrep = true
	}
	return s
}

// Snapshot extracts the slots s holds: those marked in Generated plus any
// carrying content. Other slots stay absent and in-progress flags are
// cleared.
func Snapshot(s State) jobs.Outputs {
	var out jobs.Outputs
	if s.Research != nil {
		r := *s.Research
		out.Research = &r
	}
	if s.Analysis != nil {
		a := *s.Analysis
		out.Analysis = &a
	}
	if s.Generated.CoverLetter || strings.TrimSpace(s.CoverLetter.Content) != "" {
		c := s.CoverLetter
		c.IsGenerating = false
		out.CoverLetter = &c
	}
	if s.Generated.LinkedIn || strings.TrimSpace(s.LinkedIn.Message) != "" {
		l := s.LinkedIn
		l.IsGenerating = false
		out.LinkedIn = &l
	}
	if s.Generated.InterviewPrep || len(s.InterviewPrep.Questions) > 0 {
		p := jobs.InterviewPrep{Questions: append([]generation.InterviewQuestion{}, s.InterviewPrep.Questions...)}
		out.InterviewPrep = &p
	}
	return out.Clone()
}

// PerformSwitch snapshots the outgoing job (when there is one) and only then
// computes the incoming state: hydrated from newJob, or cleared when newJob
// is nil.
func PerformSwitch(oldJobID string, newJob *jobs.Job, current State, d Defaults) SwitchResult {
	result := SwitchResult{OldJobID: oldJobID}
	if oldJobID != "" {
		snap := Snapshot(current)
		result.Snapshot = &snap
	}

	if d.OutreachInput.IsZero() {
		d.OutreachInput = current.LinkedIn.Input
	}
	if newJob == nil {
		result.Next = Clear(d)
		return result
	}
	result.Next = Hydrate(*newJob, d)
	return result
}

func defaultTone(t generation.Tone) generation.Tone {
	if t == "" {
		return generation.DefaultTone
	}
	return t
}
