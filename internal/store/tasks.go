package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Task struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	DueDate     string    `json:"dueDate"`
	Description string    `json:"description"`
	Resources   []string  `json:"resources"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, due_date, description, resources, is_completed, created_at, updated_at
		FROM tasks
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Name, &t.DueDate, &t.Description, &t.Resources, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, t Task) (*Task, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Resources == nil {
		t.Resources = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, name, due_date, description, resources, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.DueDate, t.Description, t.Resources, t.IsCompleted,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, t Task) (*Task, error) {
	t.ID = id
	if t.Resources == nil {
		t.Resources = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET name = $1, due_date = $2, description = $3, resources = $4, is_completed = $5, updated_at = now()
		WHERE id = $6
		RETURNING created_at, updated_at`,
		t.Name, t.DueDate, t.Description, t.Resources, t.IsCompleted, id,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
