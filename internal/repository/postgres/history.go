package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/models"
)

type ServiceHistoryStore struct {
	pool *pgxpool.Pool
}

func NewServiceHistoryStore(pool *pgxpool.Pool) *ServiceHistoryStore {
	return &ServiceHistoryStore{pool: pool}
}

func (s *ServiceHistoryStore) List(ctx context.Context) ([]models.ServiceHistoryRow, error) {
	query := `
		SELECT id, client_id, date, observations, created_at
		FROM service_history
		ORDER BY created_at, id`

	return s.query(ctx, query)
}

func (s *ServiceHistoryStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ServiceHistoryRow, error) {
	query := `
		SELECT id, client_id, date, observations, created_at
		FROM service_history
		WHERE client_id = $1
		ORDER BY created_at, id`

	return s.query(ctx, query, clientID)
}

func (s *ServiceHistoryStore) query(ctx context.Context, query string, args ...any) ([]models.ServiceHistoryRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list service history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ServiceHistoryRow, 0)
	for rows.Next() {
		var h models.ServiceHistoryRow
		if err := rows.Scan(&h.ID, &h.ClientID, &h.Date, &h.Observations, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service history: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service history: %w", err)
	}

	return entries, nil
}

// Insert writes the entry and bumps the client in one statement.
func (s *ServiceHistoryStore) Insert(ctx context.Context, h models.ServiceHistoryRow) error {
	query := `
		WITH touched AS (
			UPDATE clients SET updated_at = COALESCE($5::timestamptz, now())
			WHERE id = $2
		)
		INSERT INTO service_history (id, client_id, date, observations, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, now()))`

	_, err := s.pool.Exec(ctx, query, h.ID, h.ClientID, h.Date, h.Observations, nullTime(h.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert service history: %w", err)
	}
	return nil
}
