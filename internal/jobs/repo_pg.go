package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo implements JobsRepo using Postgres. Each output slot is a JSONB
// column; NULL means the slot has not been generated.
type PGRepo struct {
	DB *sql.DB
}

var slotColumns = map[Slot]string{
	SlotResearch:      "research",
	SlotAnalysis:      "analysis",
	SlotCoverLetter:   "cover_letter",
	SlotLinkedIn:      "linkedin",
	SlotInterviewPrep: "interview_prep",
}

// ListByUser returns a user's jobs, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	const query = `
SELECT id, user_id, title, company, description, company_url, source_url, linked_resume_id,
       research, analysis, cover_letter, linkedin, interview_prep, created_at, updated_at
FROM jobs
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		var job Job
		var companyURL, sourceURL, linkedResumeID sql.NullString
		var research, analysis, coverLetter, linkedIn, interviewPrep []byte
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.Title,
			&job.Company,
			&job.Description,
			&companyURL,
			&sourceURL,
			&linkedResumeID,
			&research,
			&analysis,
			&coverLetter,
			&linkedIn,
			&interviewPrep,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		job.CompanyURL = companyURL.String
		job.SourceURL = sourceURL.String
		job.LinkedResumeID = linkedResumeID.String

		var outputs Outputs
		if err := decodeSlot(research, &outputs.Research); err != nil {
			return nil, fmt.Errorf("job %s research: %w", job.ID, err)
		}
		if err := decodeSlot(analysis, &outputs.Analysis); err != nil {
			return nil, fmt.Errorf("job %s analysis: %w", job.ID, err)
		}
		if err := decodeSlot(coverLetter, &outputs.CoverLetter); err != nil {
			return nil, fmt.Errorf("job %s cover_letter: %w", job.ID, err)
		}
		if err := decodeSlot(linkedIn, &outputs.LinkedIn); err != nil {
			return nil, fmt.Errorf("job %s linkedin: %w", job.ID, err)
		}
		if err := decodeSlot(interviewPrep, &outputs.InterviewPrep); err != nil {
			return nil, fmt.Errorf("job %s interview_prep: %w", job.ID, err)
		}
		if !outputs.IsEmpty() {
			job.Outputs = &outputs
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Create inserts a new job with whatever outputs it already carries.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (
    id,
    user_id,
    title,
    company,
    description,
    company_url,
    source_url,
    linked_resume_id,
    research,
    analysis,
    cover_letter,
    linkedin,
    interview_prep,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	var outputs Outputs
	if job.Outputs != nil {
		outputs = *job.Outputs
	}
	cols, err := encodeOutputs(outputs)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		job.ID,
		job.UserID,
		job.Title,
		job.Company,
		job.Description,
		nullString(job.CompanyURL),
		nullString(job.SourceURL),
		nullString(job.LinkedResumeID),
		cols[SlotResearch],
		cols[SlotAnalysis],
		cols[SlotCoverLetter],
		cols[SlotLinkedIn],
		cols[SlotInterviewPrep],
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

// Delete removes a job owned by userID.
func (r *PGRepo) Delete(ctx context.Context, userID, jobID string) error {
	const query = `DELETE FROM jobs WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, jobID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// UpdateOutputs writes all five slots in one statement.
func (r *PGRepo) UpdateOutputs(ctx context.Context, userID, jobID string, outputs Outputs) error {
	const query = `
UPDATE jobs
SET research = $1, analysis = $2, cover_letter = $3, linkedin = $4, interview_prep = $5, updated_at = NOW()
WHERE user_id = $6 AND id = $7`

	cols, err := encodeOutputs(outputs)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(
		ctx,
		query,
		cols[SlotResearch],
		cols[SlotAnalysis],
		cols[SlotCoverLetter],
		cols[SlotLinkedIn],
		cols[SlotInterviewPrep],
		userID,
		jobID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// UpdateSlot writes a single slot column.
func (r *PGRepo) UpdateSlot(ctx context.Context, userID, jobID string, slot Slot, outputs Outputs) error {
	column, ok := slotColumns[slot]
	if !ok {
		return fmt.Errorf("%w: unknown slot %q", ErrInvalidInput, slot)
	}
	cols, err := encodeOutputs(outputs.Only(slot))
	if err != nil {
		return err
	}

	query := `UPDATE jobs SET ` + column + ` = $1, updated_at = NOW() WHERE user_id = $2 AND id = $3`
	res, err := r.DB.ExecContext(ctx, query, cols[slot], userID, jobID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func encodeOutputs(o Outputs) (map[Slot]any, error) {
	cols := make(map[Slot]any, len(slotColumns))
	values := map[Slot]any{
		SlotResearch:      o.Research,
		SlotAnalysis:      o.Analysis,
		SlotCoverLetter:   o.CoverLetter,
		SlotLinkedIn:      o.LinkedIn,
		SlotInterviewPrep: o.InterviewPrep,
	}
	for _, slot := range AllSlots() {
		if !o.Has(slot) {
			cols[slot] = nil
			continue
		}
		raw, err := json.Marshal(values[slot])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", slot, err)
		}
		cols[slot] = raw
	}
	return cols, nil
}

func decodeSlot[T any](raw []byte, dest **T) error {
	if len(raw) == 0 {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dest = &v
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ JobsRepo = (*PGRepo)(nil)
