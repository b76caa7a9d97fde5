package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/models"
)

type ClientStore struct {
	pool *pgxpool.Pool
}

func NewClientStore(pool *pgxpool.Pool) *ClientStore {
	return &ClientStore{pool: pool}
}

const clientColumns = `id, name, phone, source, level, created_at, updated_at`

func scanClient(row pgx.Row) (models.ClientRow, error) {
	var c models.ClientRow
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Source,
		&c.Level,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (s *ClientStore) List(ctx context.Context) ([]models.ClientRow, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]models.ClientRow, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

func (s *ClientStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientRow, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

// Save upserts the client row, replaces its tag joins and syncs the derived
// marketing row in a single transaction. created_at is kept on update.
func (s *ClientStore) Save(ctx context.Context, c models.ClientRow, tagIDs []uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO clients (id, name, phone, source, level, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, now()), now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				phone = EXCLUDED.phone,
				source = EXCLUDED.source,
				level = EXCLUDED.level,
				updated_at = now()`

		if _, err := tx.Exec(ctx, upsert, c.ID, c.Name, c.Phone, c.Source, c.Level, nullTime(c.CreatedAt)); err != nil {
			return fmt.Errorf("upsert client: %w", err)
		}

		if err := replaceClientTags(ctx, tx, c.ID, tagIDs); err != nil {
			return err
		}

		firstName, _, _ := strings.Cut(strings.TrimSpace(c.Name), " ")
		sync := `
			INSERT INTO marketing_messages (id, client_id, first_name, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (client_id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				phone = EXCLUDED.phone,
				updated_at = now()`
		if _, err := tx.Exec(ctx, sync, uuid.New(), c.ID, firstName, c.Phone); err != nil {
			return fmt.Errorf("sync marketing message: %w", err)
		}
		return nil
	})
}

// Delete relies on ON DELETE CASCADE for tasks, history, joins and the
// marketing row.
func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
