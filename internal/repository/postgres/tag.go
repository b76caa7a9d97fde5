package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

type TagStore struct {
	pool *pgxpool.Pool
}

func NewTagStore(pool *pgxpool.Pool) *TagStore {
	return &TagStore{pool: pool}
}

func (s *TagStore) List(ctx context.Context) ([]models.TagRow, error) {
	query := `
		SELECT id, name, created_at
		FROM tags
		ORDER BY lower(name), id`

	return s.query(ctx, "list tags", query)
}

func (s *TagStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TagRow, error) {
	query := `
		SELECT id, name, created_at
		FROM tags
		WHERE id = ANY($1)
		ORDER BY lower(name), id`

	return s.query(ctx, "get tags", query, ids)
}

func (s *TagStore) query(ctx context.Context, op, query string, args ...any) ([]models.TagRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tags := make([]models.TagRow, 0)
	for rows.Next() {
		var t models.TagRow
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}

	return tags, nil
}

// Upsert inserts the tag or renames it. A name that collides with another
// tag (ignoring case) comes back as an ALREADY_EXISTS error.
func (s *TagStore) Upsert(ctx context.Context, t models.TagRow) error {
	query := `
		INSERT INTO tags (id, name, created_at)
		VALUES ($1, $2, COALESCE($3::timestamptz, now()))
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	_, err := s.pool.Exec(ctx, query, t.ID, t.Name, nullTime(t.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.AlreadyExists("tag name already exists").
				WithDetails(map[string]string{"name": "a tag with this name already exists"})
		}
		return fmt.Errorf("upsert tag: %w", err)
	}
	return nil
}

// Delete removes the join rows and then the tag, in one transaction.
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM client_tags WHERE tag_id = $1`, id); err != nil {
			return fmt.Errorf("delete tag joins: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
