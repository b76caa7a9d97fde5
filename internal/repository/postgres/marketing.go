package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/models"
)

type MarketingStore struct {
	pool *pgxpool.Pool
}

func NewMarketingStore(pool *pgxpool.Pool) *MarketingStore {
	return &MarketingStore{pool: pool}
}

func (s *MarketingStore) List(ctx context.Context) ([]models.MarketingMessageRow, error) {
	query := `
		SELECT id, client_id, first_name, phone, message, created_at, updated_at
		FROM marketing_messages
		ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list marketing messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.MarketingMessageRow, 0)
	for rows.Next() {
		var m models.MarketingMessageRow
		if err := rows.Scan(
			&m.ID,
			&m.ClientID,
			&m.FirstName,
			&m.Phone,
			&m.Message,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan marketing message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate marketing messages: %w", err)
	}

	return messages, nil
}

func (s *MarketingStore) AssignMessage(ctx context.Context, clientIDs []uuid.UUID, message string, at time.Time) (int64, error) {
	query := `
		UPDATE marketing_messages
		SET message = $2, updated_at = $3
		WHERE client_id = ANY($1)`

	tag, err := s.pool.Exec(ctx, query, clientIDs, message, at)
	if err != nil {
		return 0, fmt.Errorf("assign marketing message: %w", err)
	}
	return tag.RowsAffected(), nil
}
