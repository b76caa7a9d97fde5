package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/clientdesk/internal/repository"
)

// NewStore wires every Postgres-backed repository onto one pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Clients:    NewClientStore(pool),
		Tags:       NewTagStore(pool),
		ClientTags: NewClientTagStore(pool),
		Tasks:      NewTaskStore(pool),
		History:    NewServiceHistoryStore(pool),
		Marketing:  NewMarketingStore(pool),
	}
}

var (
	_ repository.ClientRepository         = (*ClientStore)(nil)
	_ repository.TagRepository            = (*TagStore)(nil)
	_ repository.ClientTagRepository      = (*ClientTagStore)(nil)
	_ repository.TaskRepository           = (*TaskStore)(nil)
	_ repository.ServiceHistoryRepository = (*ServiceHistoryStore)(nil)
	_ repository.MarketingRepository      = (*MarketingStore)(nil)
)

// nullTime passes a zero time as NULL so COALESCE(..., now()) can fill it.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
