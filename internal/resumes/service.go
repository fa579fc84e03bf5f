package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"career-backend/internal/extract"
	"career-backend/internal/shared/storage/object"
	"career-backend/internal/shared/telemetry"
	"career-backend/internal/shared/util"
)

// Service contains business logic for résumés.
type Service struct {
	Store object.ObjectStore
	Repo  ResumesRepo
	Now   func() time.Time
}

// Upload saves the original file, extracts its text and records the résumé.
// The stored object is removed again when extraction or the insert fails.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Resume, error) {
	fileName = strings.TrimSpace(fileName)
	if userID == "" || fileName == "" {
		return Resume{}, ErrInvalidInput
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: read upload: %v", ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return Resume{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	stored, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileName) {
			return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Resume{}, fmt.Errorf("store resume: %w", err)
	}

	text, err := extract.ExtractTextFromBytes(ctx, data, stored.ContentType, fileName)
	if err != nil {
		s.discard(ctx, stored.Key)
		if errors.Is(err, extract.ErrUnsupported) {
			return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Resume{}, fmt.Errorf("extract resume: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		s.discard(ctx, stored.Key)
		return Resume{}, ErrNoText
	}

	res := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   fileName,
		MimeType:   stored.ContentType,
		SizeBytes:  stored.SizeBytes,
		StorageKey: stored.Key,
		Text:       text,
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		s.discard(ctx, stored.Key)
		return Resume{}, fmt.Errorf("create resume: %w", err)
	}

	telemetry.Info("resume.uploaded", map[string]any{
		"user_id":    userID,
		"resume_id":  res.ID,
		"mime_type":  res.MimeType,
		"size_bytes": res.SizeBytes,
		"text_chars": len(text),
	})
	return res, nil
}

// List returns the user's résumés, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns one résumé owned by userID.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || strings.TrimSpace(resumeID) == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// ResumeText returns the extracted text of a résumé. Records saved without
// text are re-extracted from the stored original.
func (s *Service) ResumeText(ctx context.Context, userID, resumeID string) (string, error) {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}
	if res.Text != "" {
		return res.Text, nil
	}
	if res.StorageKey == "" {
		return "", ErrNoText
	}
	text, err := extract.ExtractText(ctx, s.Store, res.StorageKey, res.MimeType, res.FileName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.discard_failed", map[string]any{
			"storage_key": key,
			"error":       err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
