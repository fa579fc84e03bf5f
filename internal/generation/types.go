package generation

import "strings"

// Tone controls the register of generated cover letters.
type Tone string

const (
	ToneProfessional   Tone = "Professional"
	ToneEnthusiastic   Tone = "Enthusiastic"
	ToneFormal         Tone = "Formal"
	ToneConversational Tone = "Conversational"
	ToneConcise        Tone = "Concise"
)

// DefaultTone is used when a job has no stored cover letter.
const DefaultTone = ToneProfessional

var tones = []Tone{ToneProfessional, ToneEnthusiastic, ToneFormal, ToneConversational, ToneConcise}

// ParseTone matches raw case-insensitively against the known tones.
func ParseTone(raw string) (Tone, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, t := range tones {
		if strings.EqualFold(trimmed, string(t)) {
			return t, true
		}
	}
	return "", false
}

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResearchResult summarizes what is publicly known about a company.
type ResearchResult struct {
	Summary string   `json:"summary"`
	Sources []Source `json:"sources"`
}

// AnalysisResult scores a résumé against a job posting.
type AnalysisResult struct {
	MatchScore int      `json:"matchScore"`
	Summary    string   `json:"summary"`
	Strengths  []string `json:"strengths"`
	Gaps       []string `json:"gaps"`
	Keywords   []string `json:"keywords"`
}

type InterviewQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Guidance string `json:"guidance"`
}

// Profile carries the candidate's public contact links.
type Profile struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Website   string `json:"website,omitempty"`
}

// OutreachInput is the form a user fills in before generating a LinkedIn
// message. It survives job switches.
type OutreachInput struct {
	RecipientName string `json:"recipientName"`
	RecipientRole string `json:"recipientRole"`
	Purpose       string `json:"purpose"`
	Note          string `json:"note"`
}

// IsZero reports whether no field has been entered.
func (o OutreachInput) IsZero() bool {
	return o == OutreachInput{}
}

// JobPosting is the subset of a job that prompts need.
type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	CompanyURL  string `json:"companyUrl,omitempty"`
}

// JobDetails is a posting extracted from free text.
type JobDetails struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Location     string   `json:"location,omitempty"`
	CompanyURL   string   `json:"companyUrl,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}
