package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/models"
)

type ClientTagStore struct {
	pool *pgxpool.Pool
}

func NewClientTagStore(pool *pgxpool.Pool) *ClientTagStore {
	return &ClientTagStore{pool: pool}
}

func (s *ClientTagStore) List(ctx context.Context) ([]models.ClientTagRow, error) {
	return s.query(ctx, `SELECT client_id, tag_id FROM client_tags ORDER BY client_id, tag_id`)
}

func (s *ClientTagStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientTagRow, error) {
	return s.query(ctx, `SELECT client_id, tag_id FROM client_tags WHERE client_id = $1 ORDER BY tag_id`, clientID)
}

func (s *ClientTagStore) query(ctx context.Context, query string, args ...any) ([]models.ClientTagRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list client tags: %w", err)
	}
	defer rows.Close()

	joins := make([]models.ClientTagRow, 0)
	for rows.Next() {
		var ct models.ClientTagRow
		if err := rows.Scan(&ct.ClientID, &ct.TagID); err != nil {
			return nil, fmt.Errorf("scan client tag: %w", err)
		}
		joins = append(joins, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client tags: %w", err)
	}

	return joins, nil
}

// replaceClientTags deletes every join of the client and reinserts tagIDs.
// Duplicate ids collapse through ON CONFLICT.
func replaceClientTags(ctx context.Context, tx pgx.Tx, clientID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM client_tags WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("clear client tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		batch.Queue(`
			INSERT INTO client_tags (client_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT (client_id, tag_id) DO NOTHING`, clientID, tagID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert client tags: %w", err)
	}
	return nil
}
