package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/orchestrator"
	"career-backend/internal/resumes"
	"career-backend/internal/workspace"
)

type fakeGenerator struct {
	initial    orchestrator.InitialResult
	initialErr error
	onInitial  func()

	lastResearch generation.ResearchResult
	lastTone     generation.Tone
	lastSummary  string
	lastOutreach generation.OutreachInput
	lastResume   string
	interviewN   int
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		initial: orchestrator.InitialResult{
			Research:    generation.ResearchResult{Summary: "Acme builds rockets"},
			Analysis:    generation.AnalysisResult{MatchScore: 80, Summary: "good fit"},
			CoverLetter: jobs.CoverLetter{Content: "Dear Acme", Tone: generation.ToneProfessional},
		},
	}
}

func (f *fakeGenerator) GenerateInitial(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, tone generation.Tone) (orchestrator.InitialResult, error) {
	f.lastResume = resumeText
	f.lastTone = tone
	if f.onInitial != nil {
		f.onInitial()
	}
	if f.initialErr != nil {
		return orchestrator.InitialResult{}, f.initialErr
	}
	res := f.initial
	res.CoverLetter.Tone = tone
	return res, nil
}

func (f *fakeGenerator) RegenerateCoverLetter(ctx context.Context, resumeText string, job generation.JobPosting, research generation.ResearchResult, tone generation.Tone, profile generation.Profile) (jobs.CoverLetter, error) {
	f.lastResearch = research
	f.lastTone = tone
	return jobs.CoverLetter{Content: "Letter for " + job.Company, Tone: tone}, nil
}

func (f *fakeGenerator) GenerateLinkedIn(ctx context.Context, resumeText string, job generation.JobPosting, input generation.OutreachInput, researchSummary string) (jobs.LinkedInMessage, error) {
	f.lastSummary = researchSummary
	f.lastOutreach = input
	return jobs.LinkedInMessage{Input: input, Message: "Hi " + input.RecipientName}, nil
}

func (f *fakeGenerator) GenerateInterview(ctx context.Context, resumeText string, job generation.JobPosting, profile generation.Profile, existing []generation.InterviewQuestion) (jobs.InterviewPrep, error) {
	f.interviewN++
	qs := append([]generation.InterviewQuestion{}, existing...)
	qs = append(qs, generation.InterviewQuestion{Question: "Why Go?", Category: "technical"})
	return jobs.InterviewPrep{Questions: qs}, nil
}

func (f *fakeGenerator) ExtractJob(ctx context.Context, rawText, sourceURL string) (generation.JobDetails, error) {
	return generation.JobDetails{Title: "Engineer", Company: "Acme", CompanyURL: sourceURL}, nil
}

type fakeResumes map[string]string

func (f fakeResumes) ResumeText(ctx context.Context, userID, resumeID string) (string, error) {
	text, ok := f[userID+"/"+resumeID]
	if !ok {
		return "", resumes.ErrNotFound
	}
	return text, nil
}

func newTestSession(t *testing.T, gen *fakeGenerator, source ResumeSource) (*Session, *jobs.MemoryRepo) {
	t.Helper()
	repo := jobs.NewMemoryRepo()
	m := NewManager(Deps{Jobs: repo, Generator: gen, Resumes: source})
	s := m.Get("user-1")
	if _, err := s.Load(context.Background(), false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, repo
}

func storedJob(t *testing.T, repo *jobs.MemoryRepo, jobID string) jobs.Job {
	t.Helper()
	list, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	for _, j := range list {
		if j.ID == jobID {
			return j
		}
	}
	t.Fatalf("job %s not persisted", jobID)
	return jobs.Job{}
}

func TestGenerateInitialPreconditions(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	if _, err := s.GenerateInitial(ctx, "", generation.Profile{}); !errors.Is(err, ErrNoActiveJob) {
		t.Fatalf("expected ErrNoActiveJob, got %v", err)
	}
	if _, _, err := s.CreateJob(ctx, jobs.Job{Title: "Engineer", Company: "Acme"}); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := s.GenerateInitial(ctx, "", generation.Profile{}); !errors.Is(err, ErrResumeMissing) {
		t.Fatalf("expected ErrResumeMissing, got %v", err)
	}
}

func TestGenerateInitialPersistsAndCompletes(t *testing.T) {
	gen := newFakeGenerator()
	s, repo := newTestSession(t, gen, nil)
	ctx := context.Background()

	job, view, err := s.CreateJob(ctx, jobs.Job{Title: "Engineer", Company: "Acme"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if view.Status != workspace.StatusIdle || view.ActiveJobID != job.ID {
		t.Fatalf("unexpected view after create: %+v", view)
	}
	s.SetResumeText("  Go developer  ")

	view, err = s.GenerateInitial(ctx, generation.ToneFormal, generation.Profile{})
	if err != nil {
		t.Fatalf("GenerateInitial: %v", err)
	}
	if gen.lastResume != "Go developer" {
		t.Fatalf("expected trimmed resume text, got %q", gen.lastResume)
	}
	if view.Status != workspace.StatusCompleted {
		t.Fatalf("expected completed, got %s", view.Status)
	}
	ws := view.Workspace
	if ws.IsAnalyzing || ws.CoverLetter.IsGenerating {
		t.Fatalf("progress flags left set: %+v", ws)
	}
	if ws.CoverLetter.Tone != generation.ToneFormal {
		t.Fatalf("expected formal tone, got %s", ws.CoverLetter.Tone)
	}

	stored := storedJob(t, repo, job.ID)
	if stored.Outputs == nil || stored.Outputs.Research == nil || stored.Outputs.Analysis == nil || stored.Outputs.CoverLetter == nil {
		t.Fatalf("expected three persisted slots, got %+v", stored.Outputs)
	}
	if stored.Outputs.CoverLetter.IsGenerating {
		t.Fatal("persisted cover letter must not be generating")
	}
}

func TestGenerationFailureClearsFlagsAndPersistsNothing(t *testing.T) {
	gen := newFakeGenerator()
	gen.initialErr = errors.New("backend down")
	s, repo := newTestSession(t, gen, nil)
	ctx := context.Background()

	job, _, _ := s.CreateJob(ctx, jobs.Job{Title: "Engineer", Company: "Acme"})
	s.SetResumeText("resume")

	if _, err := s.GenerateInitial(ctx, "", generation.Profile{}); err == nil || !strings.Contains(err.Error(), "backend down") {
		t.Fatalf("expected backend error verbatim, got %v", err)
	}
	ws := s.Workspace().Workspace
	if ws.IsAnalyzing || ws.CoverLetter.IsGenerating {
		t.Fatalf("flags left set after failure: %+v", ws)
	}
	if stored := storedJob(t, repo, job.ID); stored.Outputs != nil && !stored.Outputs.IsEmpty() {
		t.Fatalf("expected no persisted outputs, got %+v", stored.Outputs)
	}
}

func TestSwitchJobSnapshotsAndRestores(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	jobA, _, _ := s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	s.SetResumeText("resume")
	if _, err := s.GenerateInitial(ctx, "", generation.Profile{}); err != nil {
		t.Fatalf("GenerateInitial: %v", err)
	}

	jobB, view, err := s.CreateJob(ctx, jobs.Job{Title: "B", Company: "Beta"})
	if err != nil {
		t.Fatalf("CreateJob B: %v", err)
	}
	if view.Workspace.JobID != jobB.ID || view.Status != workspace.StatusIdle {
		t.Fatalf("expected fresh workspace for B, got %+v", view)
	}
	if view.Workspace.ResumeText != "resume" {
		t.Fatalf("expected resume text to carry over, got %q", view.Workspace.ResumeText)
	}

	view, err = s.SwitchJob(ctx, jobA.ID)
	if err != nil {
		t.Fatalf("SwitchJob: %v", err)
	}
	if view.Workspace.CoverLetter.Content != "Dear Acme" || view.Status != workspace.StatusCompleted {
		t.Fatalf("expected A restored, got %+v", view.Workspace)
	}

	if _, err := s.SwitchJob(ctx, "missing"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	gen := newFakeGenerator()
	s, repo := newTestSession(t, gen, nil)
	ctx := context.Background()

	jobA, _, _ := s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	s.SetResumeText("resume")

	var jobB jobs.Job
	gen.onInitial = func() {
		var err error
		jobB, _, err = s.CreateJob(ctx, jobs.Job{Title: "B", Company: "Beta"})
		if err != nil {
			t.Errorf("CreateJob during generation: %v", err)
		}
	}

	if _, err := s.GenerateInitial(ctx, "", generation.Profile{}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	view := s.Workspace()
	if view.Workspace.JobID != jobB.ID || view.Workspace.Research != nil {
		t.Fatalf("stale result leaked into new workspace: %+v", view.Workspace)
	}
	if stored := storedJob(t, repo, jobA.ID); stored.Outputs != nil && stored.Outputs.Research != nil {
		t.Fatalf("stale result persisted on job A: %+v", stored.Outputs)
	}
}

func TestRegenerateCoverLetterFallsBackToPlaceholderResearch(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	s.SetResumeText("resume")

	view, err := s.RegenerateCoverLetter(ctx, "", generation.Profile{})
	if err != nil {
		t.Fatalf("RegenerateCoverLetter: %v", err)
	}
	if gen.lastResearch.Summary != orchestrator.PlaceholderResearchSummary {
		t.Fatalf("expected placeholder research, got %q", gen.lastResearch.Summary)
	}
	if gen.lastTone != generation.DefaultTone {
		t.Fatalf("expected workspace tone, got %s", gen.lastTone)
	}
	if view.Workspace.CoverLetter.Content != "Letter for Acme" {
		t.Fatalf("unexpected letter %+v", view.Workspace.CoverLetter)
	}
}

func TestOutreachInputSurvivesSwitch(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	s.SetResumeText("resume")
	input := generation.OutreachInput{RecipientName: "Sam", Purpose: "referral"}
	if _, err := s.GenerateLinkedIn(ctx, &input); err != nil {
		t.Fatalf("GenerateLinkedIn: %v", err)
	}
	if gen.lastSummary != "" {
		t.Fatalf("expected no research summary, got %q", gen.lastSummary)
	}

	_, view, _ := s.CreateJob(ctx, jobs.Job{Title: "B", Company: "Beta"})
	if view.Workspace.LinkedIn.Input != input {
		t.Fatalf("expected outreach input to carry over, got %+v", view.Workspace.LinkedIn.Input)
	}
	if view.Workspace.LinkedIn.Message != "" {
		t.Fatalf("expected message reset, got %q", view.Workspace.LinkedIn.Message)
	}
}

func TestGenerateInterviewAppends(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	s.SetResumeText("resume")
	s.GenerateInterview(ctx, generation.Profile{})
	view, err := s.GenerateInterview(ctx, generation.Profile{})
	if err != nil {
		t.Fatalf("GenerateInterview: %v", err)
	}
	if len(view.Workspace.InterviewPrep.Questions) != 2 {
		t.Fatalf("expected two questions, got %d", len(view.Workspace.InterviewPrep.Questions))
	}
}

func TestDeleteBoundJobClearsWorkspace(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, nil)
	ctx := context.Background()

	job, _, _ := s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	view, err := s.DeleteJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if view.Workspace.JobID != "" || view.ActiveJobID != "" {
		t.Fatalf("expected empty workspace, got %+v", view)
	}
	if len(s.Jobs()) != 0 {
		t.Fatalf("expected no jobs, got %d", len(s.Jobs()))
	}
}

func TestLinkedResumeHydratesText(t *testing.T) {
	gen := newFakeGenerator()
	s, _ := newTestSession(t, gen, fakeResumes{"user-1/r-1": "stored resume"})
	ctx := context.Background()

	_, view, err := s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme", LinkedResumeID: "r-1"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if view.Workspace.ResumeText != "stored resume" {
		t.Fatalf("expected linked resume text, got %q", view.Workspace.ResumeText)
	}

	if _, err := s.UseResume(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown resume")
	}
}

func TestUseResumeWithoutSource(t *testing.T) {
	s, _ := newTestSession(t, newFakeGenerator(), nil)
	if _, err := s.UseResume(context.Background(), "r-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractJobRequiresText(t *testing.T) {
	s, _ := newTestSession(t, newFakeGenerator(), nil)
	if _, err := s.ExtractJob(context.Background(), "  ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestManagerReusesAndSweepsSessions(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager(Deps{Generator: newFakeGenerator(), IdleTTL: time.Hour, Now: func() time.Time { return now }})

	a := m.Get("a")
	if m.Get("a") != a {
		t.Fatal("expected same session for same user")
	}
	m.Get("b")

	now = now.Add(30 * time.Minute)
	m.Get("a")
	now = now.Add(45 * time.Minute)

	if removed := m.Sweep(); removed != 1 {
		t.Fatalf("expected one idle session swept, got %d", removed)
	}
	if m.Len() != 1 {
		t.Fatalf("expected one live session, got %d", m.Len())
	}
}

func TestCreateJobRejectsUnknownLinkedResume(t *testing.T) {
	s, repo := newTestSession(t, newFakeGenerator(), fakeResumes{"user-2/r-9": "someone else"})
	ctx := context.Background()

	for _, id := range []string{"nope", "r-9"} {
		_, _, err := s.CreateJob(ctx, jobs.Job{Title: "A", LinkedResumeID: id})
		if !errors.Is(err, resumes.ErrNotFound) {
			t.Fatalf("linked resume %q: expected resumes.ErrNotFound, got %v", id, err)
		}
	}
	if len(s.Jobs()) != 0 || s.Workspace().Workspace.JobID != "" {
		t.Fatalf("expected no job added and workspace untouched")
	}
	if list, _ := repo.ListByUser(ctx, "user-1"); len(list) != 0 {
		t.Fatalf("expected nothing persisted, got %d", len(list))
	}
}

func TestBlankGeneratedLetterSurvivesSwitch(t *testing.T) {
	gen := newFakeGenerator()
	gen.initial.CoverLetter.Content = ""
	s, repo := newTestSession(t, gen, nil)
	ctx := context.Background()

	first, _, err := s.CreateJob(ctx, jobs.Job{Title: "A", Company: "Acme"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	s.SetResumeText("Go developer")
	view, err := s.GenerateInitial(ctx, "", generation.Profile{})
	if err != nil {
		t.Fatalf("GenerateInitial: %v", err)
	}
	if !view.Workspace.Generated.CoverLetter || view.Status != workspace.StatusIdle {
		t.Fatalf("expected blank letter marked generated and idle, got %+v", view)
	}

	if _, _, err := s.CreateJob(ctx, jobs.Job{Title: "B", Company: "Beta"}); err != nil {
		t.Fatalf("CreateJob second: %v", err)
	}
	if stored := storedJob(t, repo, first.ID); stored.Outputs == nil || stored.Outputs.CoverLetter == nil {
		t.Fatalf("expected blank letter slot persisted, got %+v", stored.Outputs)
	}

	view, err = s.SwitchJob(ctx, first.ID)
	if err != nil {
		t.Fatalf("SwitchJob: %v", err)
	}
	if !view.Workspace.Generated.CoverLetter {
		t.Fatalf("expected blank letter slot restored as generated")
	}
}
