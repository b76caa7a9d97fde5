package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
)

// Every method takes ctx first and does I/O against the store. Nothing in
// here aggregates: the methods return flat rows and the aggregate package
// puts them together.
//
// Single-row getters return nil, nil when the row does not exist. List
// methods return an empty slice, never nil.

// ClientRepository handles the clients table and the writes that must go
// through it atomically (tag joins, derived marketing row).
type ClientRepository interface {
	List(ctx context.Context) ([]models.ClientRow, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.ClientRow, error)

	// Save upserts the client, replaces all of its tag joins with tagIDs
	// (delete then reinsert) and syncs its marketing row, in one transaction.
	Save(ctx context.Context, client models.ClientRow, tagIDs []uuid.UUID) error

	// Delete removes the client. Tasks, history, joins and the marketing row
	// go with it. Returns false if there was nothing to delete.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TagRepository handles the tags table.
type TagRepository interface {
	// List returns all tags ordered by name.
	List(ctx context.Context) ([]models.TagRow, error)

	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TagRow, error)

	Upsert(ctx context.Context, tag models.TagRow) error

	// Delete removes the tag and its join rows. Clients are untouched.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ClientTagRepository reads the client_tags join table. Writes happen
// through ClientRepository.Save and TagRepository.Delete.
//
// Both list methods order rows by client id then tag id, so a client's tags
// come out in the same order whether loaded alone or with everyone else.
type ClientTagRepository interface {
	List(ctx context.Context) ([]models.ClientTagRow, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientTagRow, error)
}

// TaskRepository handles tasks.
type TaskRepository interface {
	List(ctx context.Context) ([]models.TaskRow, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.TaskRow, error)

	// Insert stores the task and sets the owning client's updated_at to
	// task.CreatedAt in the same write.
	Insert(ctx context.Context, task models.TaskRow) error

	// SetCompleted updates the only mutable field of a task, sets the owning
	// client's updated_at to at in the same write, and returns the updated
	// row, or nil, nil if the task does not exist.
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool, at time.Time) (*models.TaskRow, error)
}

// ServiceHistoryRepository handles the append-only service_history table.
type ServiceHistoryRepository interface {
	List(ctx context.Context) ([]models.ServiceHistoryRow, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ServiceHistoryRow, error)

	// Insert stores the entry and sets the owning client's updated_at to
	// entry.CreatedAt in the same write.
	Insert(ctx context.Context, entry models.ServiceHistoryRow) error
}

// MarketingRepository handles marketing_messages.
type MarketingRepository interface {
	List(ctx context.Context) ([]models.MarketingMessageRow, error)

	// AssignMessage sets message on every row whose client_id is in
	// clientIDs and returns how many rows changed.
	AssignMessage(ctx context.Context, clientIDs []uuid.UUID, message string, at time.Time) (int64, error)
}

// Store bundles every repository the services need.
type Store struct {
	Clients    ClientRepository
	Tags       TagRepository
	ClientTags ClientTagRepository
	Tasks      TaskRepository
	History    ServiceHistoryRepository
	Marketing  MarketingRepository
}
