package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/models"
)

type TaskStore struct {
	pool *pgxpool.Pool
}

func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

const taskColumns = `id, client_id, description, completed, created_at, due_date`

func scanTask(row pgx.Row) (models.TaskRow, error) {
	var t models.TaskRow
	err := row.Scan(&t.ID, &t.ClientID, &t.Description, &t.Completed, &t.CreatedAt, &t.DueDate)
	return t, err
}

func (s *TaskStore) List(ctx context.Context) ([]models.TaskRow, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at, id`)
}

func (s *TaskStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.TaskRow, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE client_id = $1 ORDER BY created_at, id`, clientID)
}

func (s *TaskStore) query(ctx context.Context, query string, args ...any) ([]models.TaskRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.TaskRow, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

// Insert writes the task and bumps the client in one statement.
func (s *TaskStore) Insert(ctx context.Context, t models.TaskRow) error {
	query := `
		WITH touched AS (
			UPDATE clients SET updated_at = COALESCE($5::timestamptz, now())
			WHERE id = $2
		)
		INSERT INTO tasks (id, client_id, description, completed, created_at, due_date)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, now()), $6)`

	_, err := s.pool.Exec(ctx, query, t.ID, t.ClientID, t.Description, t.Completed, nullTime(t.CreatedAt), t.DueDate)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *TaskStore) SetCompleted(ctx context.Context, id uuid.UUID, completed bool, at time.Time) (*models.TaskRow, error) {
	query := `
		WITH updated AS (
			UPDATE tasks SET completed = $2
			WHERE id = $1
			RETURNING ` + taskColumns + `
		), touched AS (
			UPDATE clients SET updated_at = $3
			FROM updated
			WHERE clients.id = updated.client_id
		)
		SELECT ` + taskColumns + ` FROM updated`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, completed, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &t, nil
}
