package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements ResumesRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text, created_at`

// Create inserts a new résumé.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    extracted_text,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		res.FileName,
		res.MimeType,
		res.SizeBytes,
		res.StorageKey,
		res.Text,
		res.CreatedAt,
	)
	return err
}

// GetByID fetches a résumé by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	query := `
SELECT ` + selectColumns + `
FROM resumes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser lists résumés ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + selectColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResume(row scanner) (Resume, error) {
	var res Resume
	var text sql.NullString
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&res.MimeType,
		&res.SizeBytes,
		&res.StorageKey,
		&text,
		&res.CreatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	if text.Valid {
		res.Text = text.String
	}
	return res, nil
}

var _ ResumesRepo = (*PGRepo)(nil)
