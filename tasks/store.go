package tasks

import (
	"context"
	"errors"
)

// ErrTaskNotFound is returned by GetByID when the task does not exist or is
// owned by someone else. The two cases are deliberately indistinguishable so
// task ids cannot be probed across accounts.
var ErrTaskNotFound = errors.New("task not found")

// Repository persists task records. Every method takes the owner id and
// filters by it; mutations on tasks that are missing or not owned are silent
// no-ops, which is the ownership invariant expressed at the storage layer.
type Repository interface {
	// ListByOwner returns the owner's tasks, newest-created first.
	ListByOwner(ctx context.Context, ownerID string) ([]Task, error)
	// Insert stores a new task record.
	Insert(ctx context.Context, task *Task) error
	// GetByID returns an owned task or ErrTaskNotFound.
	GetByID(ctx context.Context, ownerID, taskID string) (*Task, error)
	// UpdateStatus sets the status of an owned task.
	UpdateStatus(ctx context.Context, ownerID, taskID string, status Status) error
	// UpdateFull overwrites title, description, priority, and status of an
	// owned task together.
	UpdateFull(ctx context.Context, ownerID, taskID, title, description string, priority Priority, status Status) error
	// Delete removes an owned task.
	Delete(ctx context.Context, ownerID, taskID string) error
	// CountByStatus returns the owner's task counts.
	CountByStatus(ctx context.Context, ownerID string) (*Stats, error)
}
