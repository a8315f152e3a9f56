package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pomotrack/apiserver/types"
)

// TaskRepository handles persistence for tasks. Every statement is scoped by user_id.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]types.Task, error) {
	const query = `
		SELECT id, user_id, name, target_count, completed_count, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var task types.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Name,
			&task.TargetCount,
			&task.CompletedCount,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	if task.ID == "" {
		task.ID = NewID()
	}
	task.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	const query = `
		INSERT INTO tasks (id, user_id, name, target_count, completed_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Name,
		task.TargetCount,
		task.CompletedCount,
		task.CreatedAt,
	); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) UpdateCompleted(ctx context.Context, userID, taskID string, completed int) error {
	const query = `
		UPDATE tasks
		SET completed_count = $1
		WHERE id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, completed, taskID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return err
	}
	return expectAffected(result)
}

func (r *TaskRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM tasks WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
