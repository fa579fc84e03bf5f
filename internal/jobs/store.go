package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"career-backend/internal/shared/metrics"
	"career-backend/internal/shared/telemetry"
)

// UpdateOptions controls how UpdateJobOutputs persists.
type UpdateOptions struct {
	// Bulk writes every slot in one call and rolls back on failure.
	// Otherwise each changed slot is written on its own and failures are
	// recorded as divergences.
	Bulk bool
}

// Divergence records a mutation that is visible in memory but was not
// confirmed by the durable store.
type Divergence struct {
	JobID string    `json:"jobId"`
	Op    string    `json:"op"`
	Slot  Slot      `json:"slot,omitempty"`
	Error string    `json:"error"`
	At    time.Time `json:"at"`
}

const (
	opDelete     = "delete"
	opUpdateSlot = "update_slot"
)

// Store is one user's authoritative job list. Mutations are applied in memory
// first, then persisted; the lock is never held across a repo call.
type Store struct {
	userID string
	repo   JobsRepo
	now    func() time.Time
	newID  func() string

	mu          sync.Mutex
	jobs        []Job
	activeID    string
	loaded      bool
	divergences []Divergence
}

// NewStore builds a store for userID.
func NewStore(userID string, repo JobsRepo, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		userID: userID,
		repo:   repo,
		now:    now,
		newID:  func() string { return uuid.New().String() },
	}
}

// UserID returns the owning user.
func (s *Store) UserID() string {
	return s.userID
}

// AddJob prepends job, marks it active and persists it. On failure the
// insert is undone and the active id goes back to the job that was active
// before the call rather than being cleared. A later mutation that already
// moved the active id elsewhere is left alone.
func (s *Store) AddJob(ctx context.Context, job Job) (Job, error) {
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	if job.Title == "" && job.Company == "" {
		return Job{}, fmt.Errorf("%w: title or company is required", ErrInvalidInput)
	}

	s.mu.Lock()
	if job.ID == "" {
		job.ID = s.newID()
	}
	if s.indexLocked(job.ID) >= 0 {
		s.mu.Unlock()
		return Job{}, fmt.Errorf("%w: duplicate job id %s", ErrInvalidInput, job.ID)
	}
	now := s.now().UTC()
	job.UserID = s.userID
	job.CreatedAt = now
	job.UpdatedAt = now
	job = job.Clone()

	prevActive := s.activeID
	s.jobs = append([]Job{job}, s.jobs...)
	s.activeID = job.ID
	s.mu.Unlock()

	if err := s.repo.Create(ctx, job); err != nil {
		s.mu.Lock()
		if i := s.indexLocked(job.ID); i >= 0 {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
		}
		if s.activeID == job.ID {
			s.activeID = prevActive
		}
		s.mu.Unlock()

		metrics.IncPersistFailed()
		telemetry.Error("jobs.add_failed", map[string]any{
			"user_id": s.userID,
			"job_id":  job.ID,
			"error":   err,
		})
		return Job{}, fmt.Errorf("%w: create job: %w", ErrPersist, err)
	}

	return job.Clone(), nil
}

// DeleteJob removes a job and clears the active id if it matched. A failed
// remote delete is logged and recorded as a divergence; the caller is not
// failed and the job is not restored.
func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	i := s.indexLocked(jobID)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	if s.activeID == jobID {
		s.activeID = ""
	}
	s.mu.Unlock()

	err := s.repo.Delete(ctx, s.userID, jobID)
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}

	metrics.IncPersistFailed()
	telemetry.Error("jobs.delete_failed", map[string]any{
		"user_id": s.userID,
		"job_id":  jobID,
		"error":   err,
	})
	s.recordDivergence(Divergence{JobID: jobID, Op: opDelete, Error: err.Error()})
	return nil
}

// UpdateJobOutputs merges delta into the job slot by slot and persists it.
func (s *Store) UpdateJobOutputs(ctx context.Context, jobID string, delta Outputs, opts UpdateOptions) error {
	slots := delta.Slots()
	if len(slots) == 0 {
		return nil
	}

	s.mu.Lock()
	i := s.indexLocked(jobID)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	var before Outputs
	if s.jobs[i].Outputs != nil {
		before = s.jobs[i].Outputs.Clone()
	}
	merged := before.Merge(delta)
	s.jobs[i].Outputs = &merged
	s.jobs[i].UpdatedAt = s.now().UTC()
	s.mu.Unlock()

	if opts.Bulk {
		return s.persistBulk(ctx, jobID, merged, before, slots)
	}
	s.persistSlots(ctx, jobID, merged, slots)
	return nil
}

func (s *Store) persistBulk(ctx context.Context, jobID string, merged, before Outputs, slots []Slot) error {
	err := s.repo.UpdateOutputs(ctx, s.userID, jobID, merged)
	if err == nil {
		s.clearDivergences(jobID, slots)
		return nil
	}

	s.mu.Lock()
	if i := s.indexLocked(jobID); i >= 0 {
		var current Outputs
		if s.jobs[i].Outputs != nil {
			current = *s.jobs[i].Outputs
		}
		for _, slot := range slots {
			current = current.Replace(slot, before)
		}
		if current.IsEmpty() {
			s.jobs[i].Outputs = nil
		} else {
			s.jobs[i].Outputs = &current
		}
	}
	s.mu.Unlock()

	metrics.IncPersistFailed()
	telemetry.Error("jobs.update_outputs_failed", map[string]any{
		"user_id": s.userID,
		"job_id":  jobID,
		"bulk":    true,
		"error":   err,
	})
	return fmt.Errorf("%w: update outputs: %w", ErrPersist, err)
}

func (s *Store) persistSlots(ctx context.Context, jobID string, merged Outputs, slots []Slot) {
	for _, slot := range slots {
		err := s.repo.UpdateSlot(ctx, s.userID, jobID, slot, merged)
		if err == nil {
			s.clearDivergences(jobID, []Slot{slot})
			continue
		}
		metrics.IncPersistFailed()
		telemetry.Error("jobs.update_slot_failed", map[string]any{
			"user_id": s.userID,
			"job_id":  jobID,
			"slot":    string(slot),
			"error":   err,
		})
		s.recordDivergence(Divergence{JobID: jobID, Op: opUpdateSlot, Slot: slot, Error: err.Error()})
	}
}

// FetchJobs loads the job list once. Later calls return the cached list
// unless force is set; a forced reload also clears recorded divergences.
func (s *Store) FetchJobs(ctx context.Context, force bool) ([]Job, error) {
	s.mu.Lock()
	if s.loaded && !force {
		out := s.snapshotLocked()
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	loaded, err := s.repo.ListByUser(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make([]Job, 0, len(loaded))
	for _, job := range loaded {
		s.jobs = append(s.jobs, job.Clone())
	}
	s.loaded = true
	if s.indexLocked(s.activeID) < 0 {
		s.activeID = ""
	}
	if force {
		s.divergences = nil
	}
	return s.snapshotLocked(), nil
}

// Jobs returns a copy of the in-memory list, newest first.
func (s *Store) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Job returns one job by id.
func (s *Store) Job(jobID string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(jobID)
	if i < 0 {
		return Job{}, false
	}
	return s.jobs[i].Clone(), true
}

func (s *Store) ActiveJobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SetActive marks jobID active. An empty id clears the selection.
func (s *Store) SetActive(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if jobID != "" && s.indexLocked(jobID) < 0 {
		return ErrNotFound
	}
	s.activeID = jobID
	return nil
}

// Divergences lists mutations not confirmed by the durable store.
func (s *Store) Divergences() []Divergence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Divergence(nil), s.divergences...)
}

func (s *Store) recordDivergence(d Divergence) {
	d.At = s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.divergences {
		if s.divergences[i].JobID == d.JobID && s.divergences[i].Op == d.Op && s.divergences[i].Slot == d.Slot {
			s.divergences[i] = d
			return
		}
	}
	s.divergences = append(s.divergences, d)
}

func (s *Store) clearDivergences(jobID string, slots []Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.divergences[:0]
	for _, d := range s.divergences {
		if d.JobID == jobID && d.Op == opUpdateSlot && containsSlot(slots, d.Slot) {
			continue
		}
		kept = append(kept, d)
	}
	s.divergences = kept
}

func (s *Store) indexLocked(jobID string) int {
	if jobID == "" {
		return -1
	}
	for i := range s.jobs {
		if s.jobs[i].ID == jobID {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Job {
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out
}

func containsSlot(slots []Slot, slot Slot) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
