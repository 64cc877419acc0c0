// Package tasks implements the task-tracking core: the task model, the
// owner-scoped repository, and the service that enforces validation and
// ownership on every operation.
package tasks

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("invalid status %q", raw)
	}
}

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a raw priority value.
func ParsePriority(raw string) (Priority, error) {
	switch Priority(raw) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(raw), nil
	default:
		return "", fmt.Errorf("invalid priority %q", raw)
	}
}

// Task is a task record. OwnerID scopes every read and mutation: a task is
// invisible to everyone but its owner.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats are per-owner task counts by status.
type Stats struct {
	Total      int64 `json:"totalTasks"`
	Completed  int64 `json:"completedTasks"`
	Pending    int64 `json:"pendingTasks"`
	InProgress int64 `json:"inProgressTasks"`
}
