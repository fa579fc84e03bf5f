package jobs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of JobsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Job // userID -> jobID -> job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]map[string]Job),
	}
}

// ListByUser returns a user's jobs, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, 0, len(r.data[userID]))
	for _, job := range r.data[userID] {
		out = append(out, job.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Create stores a new job.
func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[job.UserID] == nil {
		r.data[job.UserID] = make(map[string]Job)
	}
	r.data[job.UserID][job.ID] = job.Clone()
	return nil
}

// Delete removes a job.
func (r *MemoryRepo) Delete(ctx context.Context, userID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID][jobID]; !ok {
		return ErrNotFound
	}
	delete(r.data[userID], jobID)
	return nil
}

// UpdateOutputs replaces every output slot of a job.
func (r *MemoryRepo) UpdateOutputs(ctx context.Context, userID, jobID string, outputs Outputs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[userID][jobID]
	if !ok {
		return ErrNotFound
	}
	cloned := outputs.Clone()
	job.Outputs = &cloned
	r.data[userID][jobID] = job
	return nil
}

// UpdateSlot replaces one output slot of a job.
func (r *MemoryRepo) UpdateSlot(ctx context.Context, userID, jobID string, slot Slot, outputs Outputs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.data[userID][jobID]
	if !ok {
		return ErrNotFound
	}
	var current Outputs
	if job.Outputs != nil {
		current = *job.Outputs
	}
	merged := current.Merge(outputs.Only(slot))
	job.Outputs = &merged
	r.data[userID][jobID] = job
	return nil
}

var _ JobsRepo = (*MemoryRepo)(nil)
