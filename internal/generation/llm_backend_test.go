package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

var testJob = JobPosting{Title: "Backend Engineer", Company: "Acme", Description: "Build Go services."}

func TestResearchCompanyParsesJSON(t *testing.T) {
	c := &stubCompleter{reply: "```json\n{\"summary\":\"Acme makes anvils.\"}\n```"}
	b := NewLLMBackend(c)

	got, err := b.ResearchCompany(context.Background(), "Acme", "https://acme.test")
	if err != nil {
		t.Fatalf("ResearchCompany: %v", err)
	}
	if got.Summary != "Acme makes anvils." {
		t.Fatalf("unexpected summary %q", got.Summary)
	}
	if got.Sources == nil {
		t.Fatalf("expected non-nil sources")
	}
	if !strings.Contains(c.prompts[0], "Website: https://acme.test") {
		t.Fatalf("expected company url in prompt, got:\n%s", c.prompts[0])
	}
}

func TestResearchCompanyRequiresCompany(t *testing.T) {
	c := &stubCompleter{}
	b := NewLLMBackend(c)
	if _, err := b.ResearchCompany(context.Background(), " ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(c.prompts) != 0 {
		t.Fatalf("expected no completion call")
	}
}

func TestAnalyzeResumeClampsScore(t *testing.T) {
	c := &stubCompleter{reply: `{"matchScore":140,"summary":"Strong","strengths":["Go"],"gaps":[],"keywords":["k8s"]}`}
	b := NewLLMBackend(c)

	got, err := b.AnalyzeResume(context.Background(), "resume text", testJob, Profile{GitHub: "gh/dev"})
	if err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if got.MatchScore != 100 {
		t.Fatalf("expected clamped score 100, got %d", got.MatchScore)
	}
	if !strings.Contains(c.prompts[0], "GitHub: gh/dev") {
		t.Fatalf("expected profile links in prompt")
	}
}

func TestGenerateCoverLetterUsesToneAndResearch(t *testing.T) {
	c := &stubCompleter{reply: `{"content":"Dear Acme,"}`}
	b := NewLLMBackend(c)

	got, err := b.GenerateCoverLetter(context.Background(), "resume", testJob, ResearchResult{Summary: "anvil maker"}, ToneFormal, Profile{})
	if err != nil {
		t.Fatalf("GenerateCoverLetter: %v", err)
	}
	if got != "Dear Acme," {
		t.Fatalf("unexpected letter %q", got)
	}
	prompt := c.prompts[0]
	if !strings.Contains(prompt, "Tone: Formal") || !strings.Contains(prompt, "anvil maker") {
		t.Fatalf("expected tone and research in prompt, got:\n%s", prompt)
	}
}

func TestGenerateTextRejectsBlankContent(t *testing.T) {
	b := NewLLMBackend(&stubCompleter{reply: `{"content":"  "}`})
	if _, err := b.GenerateLinkedInMessage(context.Background(), "r", testJob, OutreachInput{}, "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestInterviewPromptListsExistingQuestions(t *testing.T) {
	c := &stubCompleter{reply: `{"questions":[{"question":"Why Go?","category":"technical","guidance":"g"},{"question":""}]}`}
	b := NewLLMBackend(c)

	got, err := b.GenerateInterviewQuestions(context.Background(), "r", testJob, []InterviewQuestion{{Question: "Tell me about yourself"}}, Profile{})
	if err != nil {
		t.Fatalf("GenerateInterviewQuestions: %v", err)
	}
	if len(got) != 1 || got[0].Question != "Why Go?" {
		t.Fatalf("unexpected questions %+v", got)
	}
	if !strings.Contains(c.prompts[0], "- Tell me about yourself") {
		t.Fatalf("expected existing questions in prompt")
	}
}

func TestExtractJobRequiresTitleOrCompany(t *testing.T) {
	b := NewLLMBackend(&stubCompleter{reply: `{"title":"","company":""}`})
	if _, err := b.ExtractJob(context.Background(), "some posting", ""); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestBackendPropagatesCompleterError(t *testing.T) {
	boom := errors.New("openai http status 500: boom")
	b := NewLLMBackend(&stubCompleter{err: boom})
	if _, err := b.ResearchCompany(context.Background(), "Acme", ""); !errors.Is(err, boom) {
		t.Fatalf("expected completer error verbatim, got %v", err)
	}
}

func TestInvalidJSONIsInvalidOutput(t *testing.T) {
	b := NewLLMBackend(&stubCompleter{reply: "I cannot help with that."})
	if _, err := b.AnalyzeResume(context.Background(), "r", testJob, Profile{}); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestParseTone(t *testing.T) {
	if tone, ok := ParseTone(" enthusiastic "); !ok || tone != ToneEnthusiastic {
		t.Fatalf("expected Enthusiastic, got %q %v", tone, ok)
	}
	if _, ok := ParseTone("sarcastic"); ok {
		t.Fatalf("expected unknown tone to be rejected")
	}
}
