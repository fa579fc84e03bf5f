package jobs

import "career-backend/internal/generation"

// Slot names one kind of generated output.
type Slot string

const (
	SlotResearch      Slot = "research"
	SlotAnalysis      Slot = "analysis"
	SlotCoverLetter   Slot = "cover_letter"
	SlotLinkedIn      Slot = "linkedin"
	SlotInterviewPrep Slot = "interview_prep"
)

// AllSlots lists slots in persistence order.
func AllSlots() []Slot {
	return []Slot{SlotResearch, SlotAnalysis, SlotCoverLetter, SlotLinkedIn, SlotInterviewPrep}
}

// Outputs holds the generated slots of a job. A nil slot has not been
// generated; a non-nil slot with blank content was generated blank.
type Outputs struct {
	Research      *generation.ResearchResult `json:"research,omitempty"`
	Analysis      *generation.AnalysisResult `json:"analysis,omitempty"`
	CoverLetter   *CoverLetter               `json:"coverLetter,omitempty"`
	LinkedIn      *LinkedInMessage           `json:"linkedIn,omitempty"`
	InterviewPrep *InterviewPrep             `json:"interviewPrep,omitempty"`
}

// Slots returns the slots that are set, in persistence order.
func (o Outputs) Slots() []Slot {
	var out []Slot
	for _, s := range AllSlots() {
		if o.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether slot is set.
func (o Outputs) Has(slot Slot) bool {
	switch slot {
	case SlotResearch:
		return o.Research != nil
	case SlotAnalysis:
		return o.Analysis != nil
	case SlotCoverLetter:
		return o.CoverLetter != nil
	case SlotLinkedIn:
		return o.LinkedIn != nil
	case SlotInterviewPrep:
		return o.InterviewPrep != nil
	default:
		return false
	}
}

// IsEmpty reports whether no slot is set.
func (o Outputs) IsEmpty() bool {
	return len(o.Slots()) == 0
}

// Only returns a copy holding just slot.
func (o Outputs) Only(slot Slot) Outputs {
	var out Outputs
	src := o.Clone()
	switch slot {
	case SlotResearch:
		out.Research = src.Research
	case SlotAnalysis:
		out.Analysis = src.Analysis
	case SlotCoverLetter:
		out.CoverLetter = src.CoverLetter
	case SlotLinkedIn:
		out.LinkedIn = src.LinkedIn
	case SlotInterviewPrep:
		out.InterviewPrep = src.InterviewPrep
	}
	return out
}

// Merge returns o with every slot set in delta replaced. Slots absent from
// delta keep their current value.
func (o Outputs) Merge(delta Outputs) Outputs {
	out := o.Clone()
	d := delta.Clone()
	if d.Research != nil {
		out.Research = d.Research
	}
	if d.Analysis != nil {
		out.Analysis = d.Analysis
	}
	if d.CoverLetter != nil {
		out.CoverLetter = d.CoverLetter
	}
	if d.LinkedIn != nil {
		out.LinkedIn = d.LinkedIn
	}
	if d.InterviewPrep != nil {
		out.InterviewPrep = d.InterviewPrep
	}
	return out
}

// Clone deep-copies every slot.
func (o Outputs) Clone() Outputs {
	var out Outputs
	if o.Research != nil {
		r := *o.Research
		r.Sources = append([]generation.Source(nil), o.Research.Sources...)
		out.Research = &r
	}
	if o.Analysis != nil {
		a := *o.Analysis
		a.Strengths = append([]string(nil), o.Analysis.Strengths...)
		a.Gaps = append([]string(nil), o.Analysis.Gaps...)
		a.Keywords = append([]string(nil), o.Analysis.Keywords...)
		out.Analysis = &a
	}
	if o.CoverLetter != nil {
		c := *o.CoverLetter
		out.CoverLetter = &c
	}
	if o.LinkedIn != nil {
		l := *o.LinkedIn
		out.LinkedIn = &l
	}
	if o.InterviewPrep != nil {
		p := *o.InterviewPrep
		p.Questions = append([]generation.InterviewQuestion(nil), o.InterviewPrep.Questions...)
		out.InterviewPrep = &p
	}
	return out
}

// Replace returns o with slot taken from src, including a nil slot.
func (o Outputs) Replace(slot Slot, src Outputs) Outputs {
	out := o.Clone()
	from := src.Clone()
	switch slot {
	case SlotResearch:
		out.Research = from.Research
	case SlotAnalysis:
		out.Analysis = from.Analysis
	case SlotCoverLetter:
		out.CoverLetter = from.CoverLetter
	case SlotLinkedIn:
		out.LinkedIn = from.LinkedIn
	case SlotInterviewPrep:
		out.InterviewPrep = from.InterviewPrep
	}
	return out
}
