package tasks

import (
	"context"

	"github.com/google/uuid"

	"github.com/user/taskman-go/apperror"
)

// Service wraps the repository with validation and ownership enforcement.
// Every method takes the calling owner's id explicitly; nothing here reads
// ambient request state, which keeps the same code path usable from page
// handlers, the JSON API, and tests.
type Service struct {
	repo Repository
}

// NewService creates a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the owner's tasks, newest-created first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Task, error) {
	result, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	return result, nil
}

// Create stores a new task for the owner. Priority defaults to medium when
// absent; status is always initialized to pending and cannot be supplied by
// the caller.
func (s *Service) Create(ctx context.Context, ownerID, title, description, priority string) (*Task, error) {
	if title == "" {
		return nil, apperror.NewValidationError("title is required", nil)
	}

	p := PriorityMedium
	if priority != "" {
		parsed, err := ParsePriority(priority)
		if err != nil {
			return nil, apperror.NewValidationError(err.Error(), nil)
		}
		p = parsed
	}

	task := &Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Priority:    p,
	}
	if err := s.repo.Insert(ctx, task); err != nil {
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return task, nil
}

// UpdateStatus sets the status of an owned task. A missing or foreign task
// id is a silent no-op: the caller learns nothing about tasks it does not
// own.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, taskID, status string) error {
	parsed, err := ParseStatus(status)
	if err != nil {
		return apperror.NewValidationError(err.Error(), nil)
	}
	if !validID(taskID) {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, ownerID, taskID, parsed); err != nil {
		return apperror.NewDatabaseError("failed to update task status", err)
	}
	return nil
}

// UpdateFull overwrites title, description, priority, and status together.
// Same ownership scoping and no-op semantics as UpdateStatus.
func (s *Service) UpdateFull(ctx context.Context, ownerID, taskID, title, description, priority, status string) error {
	if title == "" {
		return apperror.NewValidationError("title is required", nil)
	}
	parsedPriority, err := ParsePriority(priority)
	if err != nil {
		return apperror.NewValidationError(err.Error(), nil)
	}
	parsedStatus, err := ParseStatus(status)
	if err != nil {
		return apperror.NewValidationError(err.Error(), nil)
	}
	if !validID(taskID) {
		return nil
	}
	if err := s.repo.UpdateFull(ctx, ownerID, taskID, title, description, parsedPriority, parsedStatus); err != nil {
		return apperror.NewDatabaseError("failed to update task", err)
	}
	return nil
}

// Delete removes an owned task, silently ignoring missing or foreign ids.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if !validID(taskID) {
		return nil
	}
	if err := s.repo.Delete(ctx, ownerID, taskID); err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	return nil
}

// GetByID returns an owned task. Missing and not-owned both come back as the
// same NotFoundError.
func (s *Service) GetByID(ctx context.Context, ownerID, taskID string) (*Task, error) {
	if !validID(taskID) {
		return nil, apperror.NewNotFoundError("task not found", nil)
	}
	task, err := s.repo.GetByID(ctx, ownerID, taskID)
	if err != nil {
		if err == ErrTaskNotFound {
			return nil, apperror.NewNotFoundError("task not found", ErrTaskNotFound)
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	return task, nil
}

// Stats returns the owner's task counts by status.
func (s *Service) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	stats, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to count tasks", err)
	}
	return stats, nil
}

// validID filters out strings that cannot be task ids before they reach the
// store. Postgres would otherwise reject a malformed UUID with a type error,
// where the contract demands a silent miss.
func validID(taskID string) bool {
	_, err := uuid.Parse(taskID)
	return err == nil
}
