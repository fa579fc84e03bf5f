package jobs

import "context"

// JobsRepo is the durable store for jobs. Every read and write is scoped to
// the owning user.
type JobsRepo interface {
	ListByUser(ctx context.Context, userID string) ([]Job, error)
	Create(ctx context.Context, job Job) error
	Delete(ctx context.Context, userID, jobID string) error
	// UpdateOutputs writes every slot of outputs in one statement.
	UpdateOutputs(ctx context.Context, userID, jobID string, outputs Outputs) error
	// UpdateSlot writes a single slot, leaving the others untouched.
	UpdateSlot(ctx context.Context, userID, jobID string, slot Slot, outputs Outputs) error
}
