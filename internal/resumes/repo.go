package resumes

import "context"

// ResumesRepo defines persistence operations for résumés.
type ResumesRepo interface {
	Create(ctx context.Context, r Resume) error
	GetByID(ctx context.Context, userID, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
}
