package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryRecord pairs a task with an insertion sequence number so list order
// stays stable when created-at timestamps collide.
type memoryRecord struct {
	task Task
	seq  uint64
}

// MemoryRepository implements Repository in process memory. It backs tests
// and development and must behave observably like the Postgres
// implementation: same ownership scoping, same no-op semantics, same list
// order.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*memoryRecord
	nextSeq uint64
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*memoryRecord)}
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Task, error) {
	r.mu.RLock()
	var records []*memoryRecord
	for _, rec := range r.byID {
		if rec.task.OwnerID == ownerID {
			records = append(records, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].task.CreatedAt.Equal(records[j].task.CreatedAt) {
			return records[i].task.CreatedAt.After(records[j].task.CreatedAt)
		}
		return records[i].seq > records[j].seq
	})

	result := make([]Task, len(records))
	for i, rec := range records {
		result[i] = rec.task
	}
	return result, nil
}

func (r *MemoryRepository) Insert(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.nextSeq++
	r.byID[task.ID] = &memoryRecord{task: *task, seq: r.nextSeq}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, ownerID, taskID string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[taskID]
	if !ok || rec.task.OwnerID != ownerID {
		return nil, ErrTaskNotFound
	}
	copied := rec.task
	return &copied, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, ownerID, taskID string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[taskID]; ok && rec.task.OwnerID == ownerID {
		rec.task.Status = status
	}
	return nil
}

func (r *MemoryRepository) UpdateFull(_ context.Context, ownerID, taskID, title, description string, priority Priority, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[taskID]; ok && rec.task.OwnerID == ownerID {
		rec.task.Title = title
		rec.task.Description = description
		rec.task.Priority = priority
		rec.task.Status = status
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.byID[taskID]; ok && rec.task.OwnerID == ownerID {
		delete(r.byID, taskID)
	}
	return nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context, ownerID string) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats Stats
	for _, rec := range r.byID {
		if rec.task.OwnerID != ownerID {
			continue
		}
		stats.Total++
		switch rec.task.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusPending:
			stats.Pending++
		case StatusInProgress:
			stats.InProgress++
		}
	}
	return &stats, nil
}
