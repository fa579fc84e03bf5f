// Package session coordinates one actor's job list, workspace and generation
// requests. It applies the optimistic job store, the workspace transitions and
// the orchestrator in the order the workflow requires.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/orchestrator"
	"career-backend/internal/resumes"
	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/workspace"
)

// Generator runs the generation pipeline.
type Generator interface {
	GenerateInitial(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, tone generation.Tone) (orchestrator.InitialResult, error)
	RegenerateCoverLetter(ctx context.Context, resumeText string, job generation.JobPosting, research generation.ResearchResult, tone generation.Tone, profile generation.Profile) (jobs.CoverLetter, error)
	GenerateLinkedIn(ctx context.Context, resumeText string, job generation.JobPosting, input generation.OutreachInput, researchSummary string) (jobs.LinkedInMessage, error)
	GenerateInterview(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, existing []generation.InterviewQuestion) (jobs.InterviewPrep, error)
	ExtractJob(ctx context.Context, rawText, sourceURL string) (generation.JobDetails, error)
}

// ResumeSource resolves the text of a stored résumé.
type ResumeSource interface {
	ResumeText(ctx context.Context, userID, resumeID string) (string, error)
}

// View is what clients see of a session.
type View struct {
	ActiveJobID string           `json:"activeJobId"`
	Status      workspace.Status `json:"status"`
	Workspace   workspace.State  `json:"workspace"`
}

// Session is one actor's workspace over their job store.
type Session struct {
	userID      string
	store       *jobs.Store
	gen         Generator
	resumes     ResumeSource
	defaultTone generation.Tone

	mu       sync.Mutex
	ws       workspace.State
	outreach generation.OutreachInput
	epoch    uint64
}

// ticket identifies the workspace a generation was started for.
type ticket struct {
	jobID string
	epoch uint64
}

func newSession(userID string, store *jobs.Store, gen Generator, resumes ResumeSource, tone generation.Tone) *Session {
	if tone == "" {
		tone = generation.DefaultTone
	}
	s := &Session{
		userID:      userID,
		store:       store,
		gen:         gen,
		resumes:     resumes,
		defaultTone: tone,
	}
	s.ws = workspace.Clear(workspace.Defaults{Tone: tone})
	return s
}

func (s *Session) UserID() string {
	return s.userID
}

// Load fetches the job list (once unless force) and hydrates the active job
// if the workspace is not already bound to it.
func (s *Session) Load(ctx context.Context, force bool) ([]jobs.Job, error) {
	list, err := s.store.FetchJobs(ctx, force)
	if err != nil {
		return nil, err
	}

	activeID := s.store.ActiveJobID()
	s.mu.Lock()
	bound := s.ws.JobID
	s.mu.Unlock()

	switch {
	case activeID == "" && bound != "":
		s.replace(workspace.Clear(s.defaults("")))
	case activeID != "" && activeID != bound:
		if job, ok := s.store.Job(activeID); ok {
			s.replace(workspace.Hydrate(job, s.defaults(s.resumeFor(ctx, job))))
		}
	}
	return list, nil
}

// Jobs returns the in-memory job list.
func (s *Session) Jobs() []jobs.Job {
	return s.store.Jobs()
}

// Divergences lists persistence failures not yet reconciled.
func (s *Session) Divergences() []jobs.Divergence {
	return s.store.Divergences()
}

// Workspace returns the current view.
func (s *Session) Workspace() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// CreateJob snapshots the outgoing job, adds the new job and binds the
// workspace to it. A linked résumé must belong to the actor. Nothing changes
// if it does not resolve or the outgoing snapshot cannot be saved.
func (s *Session) CreateJob(ctx context.Context, job jobs.Job) (jobs.Job, View, error) {
	job.LinkedResumeID = strings.TrimSpace(job.LinkedResumeID)
	linkedText, err := s.linkedResume(ctx, job.LinkedResumeID)
	if err != nil {
		return jobs.Job{}, View{}, err
	}

	s.mu.Lock()
	res := workspace.PerformSwitch(s.ws.JobID, nil, s.ws, s.defaultsLocked(""))
	s.mu.Unlock()

	if err := s.saveSnapshot(ctx, res); err != nil {
		return jobs.Job{}, View{}, err
	}

	created, err := s.store.AddJob(ctx, job)
	if err != nil {
		return jobs.Job{}, View{}, err
	}

	next := workspace.Hydrate(created, s.defaults(linkedText))
	return created, s.replace(next), nil
}

// linkedResume resolves resumeID for the actor. A résumé without extractable
// text is still a valid link.
func (s *Session) linkedResume(ctx context.Context, resumeID string) (string, error) {
	if resumeID == "" {
		return "", nil
	}
	if s.resumes == nil {
		return "", fmt.Errorf("%w: resume storage unavailable", ErrInvalidInput)
	}
	text, err := s.resumes.ResumeText(ctx, s.userID, resumeID)
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, resumes.ErrNoText):
		return "", nil
	default:
		return "", fmt.Errorf("linked resume %s: %w", resumeID, err)
	}
}

// SwitchJob saves the outgoing workspace and hydrates jobID.
func (s *Session) SwitchJob(ctx context.Context, jobID string) (View, error) {
	target, ok := s.store.Job(jobID)
	if !ok {
		return View{}, jobs.ErrNotFound
	}
	resumeText := s.resumeFor(ctx, target)

	s.mu.Lock()
	if s.ws.JobID == jobID {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, nil
	}
	res := workspace.PerformSwitch(s.ws.JobID, &target, s.ws, s.defaultsLocked(resumeText))
	s.mu.Unlock()

	if err := s.saveSnapshot(ctx, res); err != nil {
		return View{}, err
	}
	if err := s.store.SetActive(jobID); err != nil {
		return View{}, err
	}
	return s.replace(res.Next), nil
}

// DeleteJob removes a job. Deleting the bound job clears the workspace.
func (s *Session) DeleteJob(ctx context.Context, jobID string) (View, error) {
	if err := s.store.DeleteJob(ctx, jobID); err != nil {
		return View{}, err
	}

	s.mu.Lock()
	bound := s.ws.JobID
	s.mu.Unlock()
	if bound == jobID {
		return s.replace(workspace.Clear(s.defaults(""))), nil
	}
	return s.Workspace(), nil
}

// SetResumeText binds text to the workspace.
func (s *Session) SetResumeText(text string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.ResumeText = strings.TrimSpace(text)
	return s.viewLocked()
}

// UseResume binds a stored résumé's text to the workspace.
func (s *Session) UseResume(ctx context.Context, resumeID string) (View, error) {
	if s.resumes == nil {
		return View{}, fmt.Errorf("%w: resume storage unavailable", ErrInvalidInput)
	}
	text, err := s.resumes.ResumeText(ctx, s.userID, resumeID)
	if err != nil {
		return View{}, err
	}
	return s.SetResumeText(text), nil
}

// SetOutreachInput records the outreach form. It survives job switches.
func (s *Session) SetOutreachInput(input generation.OutreachInput) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outreach = input
	s.ws.LinkedIn.Input = input
	return s.viewLocked()
}

// GenerateInitial runs research, analysis and the cover letter for the bound
// job and persists the results slot by slot.
func (s *Session) GenerateInitial(ctx context.Context, tone generation.Tone, profile generation.Profile) (View, error) {
	if tone == "" {
		tone = s.defaultTone
	}
	t, resumeText, job, err := s.begin(func(ws *workspace.State) {
		ws.IsAnalyzing = true
		ws.CoverLetter.IsGenerating = true
	})
	if err != nil {
		return View{}, err
	}

	res, genErr := s.gen.GenerateInitial(ctx, resumeText, job.Posting(), profile, tone)

	return s.finish(ctx, t, genErr, func(ws *workspace.State) {
		ws.IsAnalyzing = false
		ws.CoverLetter.IsGenerating = false
	}, func(ws *workspace.State) jobs.Outputs {
		research := res.Research
		analysis := res.Analysis
		ws.Research = &research
		ws.Analysis = &analysis
		ws.CoverLetter = res.CoverLetter
		ws.Generated.CoverLetter = true
		return jobs.Outputs{
			Research:    &research,
			Analysis:    &analysis,
			CoverLetter: &res.CoverLetter,
		}
	})
}

// RegenerateCoverLetter writes a fresh letter from the workspace research.
func (s *Session) RegenerateCoverLetter(ctx context.Context, tone generation.Tone, profile generation.Profile) (View, error) {
	var research generation.ResearchResult
	t, resumeText, job, err := s.begin(func(ws *workspace.State) {
		if tone == "" {
			tone = ws.CoverLetter.Tone
		}
		if ws.Research != nil {
			research = *ws.Research
		}
		ws.CoverLetter.IsGenerating = true
	})
	if err != nil {
		return View{}, err
	}
	if strings.TrimSpace(research.Summary) == "" {
		research.Summary = orchestrator.PlaceholderResearchSummary
	}

	letter, genErr := s.gen.RegenerateCoverLetter(ctx, resumeText, job.Posting(), research, tone, profile)

	return s.finish(ctx, t, genErr, func(ws *workspace.State) {
		ws.CoverLetter.IsGenerating = false
	}, func(ws *workspace.State) jobs.Outputs {
		ws.CoverLetter = letter
		ws.Generated.CoverLetter = true
		return jobs.Outputs{CoverLetter: &letter}
	})
}

// GenerateLinkedIn writes an outreach message. A non-nil input replaces the
// stored outreach form first.
func (s *Session) GenerateLinkedIn(ctx context.Context, input *generation.OutreachInput) (View, error) {
	if input != nil {
		s.SetOutreachInput(*input)
	}
	var (
		form    generation.OutreachInput
		summary string
	)
	t, resumeText, job, err := s.begin(func(ws *workspace.State) {
		form = ws.LinkedIn.Input
		if ws.Research != nil {
			summary = ws.Research.Summary
		}
		ws.LinkedIn.IsGenerating = true
	})
	if err != nil {
		return View{}, err
	}

	msg, genErr := s.gen.GenerateLinkedIn(ctx, resumeText, job.Posting(), form, summary)

	return s.finish(ctx, t, genErr, func(ws *workspace.State) {
		ws.LinkedIn.IsGenerating = false
	}, func(ws *workspace.State) jobs.Outputs {
		ws.LinkedIn = msg
		ws.Generated.LinkedIn = true
		return jobs.Outputs{LinkedIn: &msg}
	})
}

// GenerateInterview appends new questions to the workspace list.
func (s *Session) GenerateInterview(ctx context.Context, profile generation.Profile) (View, error) {
	var existing []generation.InterviewQuestion
	t, resumeText, job, err := s.begin(func(ws *workspace.State) {
		existing = append([]generation.InterviewQuestion(nil), ws.InterviewPrep.Questions...)
		ws.InterviewPrep.IsGenerating = true
	})
	if err != nil {
		return View{}, err
	}

	prep, genErr := s.gen.GenerateInterview(ctx, resumeText, job.Posting(), profile, existing)

	return s.finish(ctx, t, genErr, func(ws *workspace.State) {
		ws.InterviewPrep.IsGenerating = false
	}, func(ws *workspace.State) jobs.Outputs {
		ws.InterviewPrep = prep
		ws.Generated.InterviewPrep = true
		return jobs.Outputs{InterviewPrep: &prep}
	})
}

// ExtractJob structures a pasted posting. It does not touch the workspace.
func (s *Session) ExtractJob(ctx context.Context, rawText, sourceURL string) (generation.JobDetails, error) {
	if strings.TrimSpace(rawText) == "" {
		return generation.JobDetails{}, fmt.Errorf("%w: posting text is required", ErrInvalidInput)
	}
	return s.gen.ExtractJob(ctx, rawText, sourceURL)
}

// begin validates the workspace, marks modules as generating and returns
// the ticket the result must match.
func (s *Session) begin(mark func(ws *workspace.State)) (ticket, string, jobs.Job, error) {
	s.mu.Lock()
	jobID := s.ws.JobID
	resumeText := s.ws.ResumeText
	s.mu.Unlock()

	if jobID == "" {
		return ticket{}, "", jobs.Job{}, ErrNoActiveJob
	}
	if strings.TrimSpace(resumeText) == "" {
		return ticket{}, "", jobs.Job{}, ErrResumeMissing
	}
	job, ok := s.store.Job(jobID)
	if !ok {
		return ticket{}, "", jobs.Job{}, ErrNoActiveJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws.JobID != jobID {
		return ticket{}, "", jobs.Job{}, ErrStaleResult
	}
	mark(&s.ws)
	return ticket{jobID: jobID, epoch: s.epoch}, s.ws.ResumeText, job, nil
}

// finish applies a generation outcome if the workspace still belongs to the
// ticket's job, then persists the produced slots.
func (s *Session) finish(ctx context.Context, t ticket, genErr error, unmark func(ws *workspace.State), apply func(ws *workspace.State) jobs.Outputs) (View, error) {
	s.mu.Lock()
	if s.epoch != t.epoch || s.ws.JobID != t.jobID {
		s.mu.Unlock()
		metrics.IncStaleResult()
		telemetry.Warn("session.stale_result", map[string]any{
			"user_id": s.userID,
			"job_id":  t.jobID,
			"epoch":   t.epoch,
			"failed":  genErr != nil,
		})
		return View{}, ErrStaleResult
	}

	unmark(&s.ws)
	if genErr != nil {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, genErr
	}
	delta := apply(&s.ws)
	view := s.viewLocked()
	s.mu.Unlock()

	if err := s.store.UpdateJobOutputs(ctx, t.jobID, delta, jobs.UpdateOptions{}); err != nil && !errors.Is(err, jobs.ErrNotFound) {
		return view, err
	}
	return view, nil
}

func (s *Session) saveSnapshot(ctx context.Context, res workspace.SwitchResult) error {
	if res.Snapshot == nil || res.Snapshot.IsEmpty() {
		return nil
	}
	err := s.store.UpdateJobOutputs(ctx, res.OldJobID, *res.Snapshot, jobs.UpdateOptions{Bulk: true})
	if err == nil || errors.Is(err, jobs.ErrNotFound) {
		return nil
	}
	return err
}

// replace installs next as the workspace and invalidates in-flight
// generations.
func (s *Session) replace(next workspace.State) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.ws = next
	return s.viewLocked()
}

func (s *Session) resumeFor(ctx context.Context, job jobs.Job) string {
	if job.LinkedResumeID == "" || s.resumes == nil {
		return ""
	}
	text, err := s.resumes.ResumeText(ctx, s.userID, job.LinkedResumeID)
	if err != nil {
		telemetry.Warn("session.linked_resume_unavailable", map[string]any{
			"user_id":   s.userID,
			"job_id":    job.ID,
			"resume_id": job.LinkedResumeID,
			"error":     err,
		})
		return ""
	}
	return text
}

func (s *Session) defaults(resumeText string) workspace.Defaults {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultsLocked(resumeText)
}

// defaultsLocked keeps the current résumé text unless the incoming job links
// its own.
func (s *Session) defaultsLocked(resumeText string) workspace.Defaults {
	if resumeText == "" {
		resumeText = s.ws.ResumeText
	}
	return workspace.Defaults{
		Tone:          s.defaultTone,
		OutreachInput: s.outreach,
		ResumeText:    resumeText,
	}
}

func (s *Session) viewLocked() View {
	ws := s.ws
	if s.ws.InterviewPrep.Questions != nil {
		ws.InterviewPrep.Questions = append([]generation.InterviewQuestion{}, s.ws.InterviewPrep.Questions...)
	}
	return View{
		ActiveJobID: s.store.ActiveJobID(),
		Status:      ws.Status(),
		Workspace:   ws,
	}
}
