package tasks

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository against the tasks table. Every
// statement is a single scoped query keyed by (id, user_id); the row filter
// is what enforces ownership, so there is no separate permission check to
// get out of sync.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Task, error) {
	query := `SELECT id, user_id, title, description, status, priority, created_at
	          FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Insert(ctx context.Context, task *Task) error {
	query := `INSERT INTO tasks (id, user_id, title, description, status, priority)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, task.Status, task.Priority,
	).Scan(&task.CreatedAt)
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, taskID string) (*Task, error) {
	query := `SELECT id, user_id, title, description, status, priority, created_at
	          FROM tasks WHERE id = $1 AND user_id = $2`

	var t Task
	err := r.db.QueryRow(ctx, query, taskID, ownerID).Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, ownerID, taskID string, status Status) error {
	// Zero rows affected means the task is missing or not owned; either way
	// the operation is a silent no-op.
	query := `UPDATE tasks SET status = $1 WHERE id = $2 AND user_id = $3`
	_, err := r.db.Exec(ctx, query, status, taskID, ownerID)
	return err
}

func (r *PostgresRepository) UpdateFull(ctx context.Context, ownerID, taskID, title, description string, priority Priority, status Status) error {
	query := `UPDATE tasks SET title = $1, description = $2, priority = $3, status = $4
	          WHERE id = $5 AND user_id = $6`
	_, err := r.db.Exec(ctx, query, title, description, priority, status, taskID, ownerID)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, taskID, ownerID)
	return err
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, ownerID string) (*Stats, error) {
	// One grouped pass instead of the four separate counts the per-status
	// queries would need.
	query := `SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case StatusCompleted:
			stats.Completed = count
		case StatusPending:
			stats.Pending = count
		case StatusInProgress:
			stats.InProgress = count
		}
	}
	return &stats, rows.Err()
}
