package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of ResumesRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Resume // userID -> resumes
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Resume)}
}

// Create stores a résumé.
func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[res.UserID] = append(r.data[res.UserID], res)
	return nil
}

// GetByID returns a résumé by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.data[userID] {
		if res.ID == resumeID {
			return res, nil
		}
	}
	return Resume{}, ErrNotFound
}

// ListByUser returns résumés for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	all := make([]Resume, len(r.data[userID]))
	copy(all, r.data[userID])
	r.mu.RUnlock()

	if offset >= len(all) {
		return []Resume{}, nil
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

var _ ResumesRepo = (*MemoryRepo)(nil)
