package aggregate

import (
	"context"

	"github.com/google/uuid"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
	"go.uber.org/zap"
)

// Loader reads rows from the store and hands them to the pure aggregation
// functions.
type Loader struct {
	store  repository.Store
	logger *zap.Logger
}

func NewLoader(store repository.Store, logger *zap.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

// LoadAll fetches each table once and aggregates every client.
//
// If ctx is cancelled while the fetches are in flight the result is
// discarded and ctx.Err() returned, so a caller that went away never gets
// a late snapshot applied.
func (l *Loader) LoadAll(ctx context.Context) ([]models.Client, error) {
	snap, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clients, stats := Assemble(snap)
	if stats.Skipped() > 0 {
		l.logger.Debug("skipped dangling relation rows",
			zap.Int("client_tags", stats.SkippedClientTags),
			zap.Int("tasks", stats.SkippedTasks),
			zap.Int("service_history", stats.SkippedHistory),
		)
	}
	return clients, nil
}

func (l *Loader) snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Clients, err = l.store.Clients.List(ctx); err != nil {
		return Snapshot{}, apperrors.Unavailable("list clients", err)
	}
	if snap.Tags, err = l.store.Tags.List(ctx); err != nil {
		return Snapshot{}, apperrors.Unavailable("list tags", err)
	}
	if snap.ClientTags, err = l.store.ClientTags.List(ctx); err != nil {
		return Snapshot{}, apperrors.Unavailable("list client tags", err)
	}
	if snap.Tasks, err = l.store.Tasks.List(ctx); err != nil {
		return Snapshot{}, apperrors.Unavailable("list tasks", err)
	}
	if snap.History, err = l.store.History.List(ctx); err != nil {
		return Snapshot{}, apperrors.Unavailable("list service history", err)
	}
	return snap, nil
}

// LoadOne aggregates a single client using queries filtered by client id.
// It returns a NOT_FOUND error when the client row does not exist.
func (l *Loader) LoadOne(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	row, err := l.store.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Unavailable("get client", err)
	}
	if row == nil {
		return nil, apperrors.NotFound("client not found")
	}

	snap := Snapshot{Clients: []models.ClientRow{*row}}
	if snap.ClientTags, err = l.store.ClientTags.ListByClient(ctx, id); err != nil {
		return nil, apperrors.Unavailable("list client tags", err)
	}
	if len(snap.ClientTags) > 0 {
		ids := make([]uuid.UUID, 0, len(snap.ClientTags))
		for _, ct := range snap.ClientTags {
			ids = append(ids, ct.TagID)
		}
		if snap.Tags, err = l.store.Tags.GetByIDs(ctx, ids); err != nil {
			return nil, apperrors.Unavailable("get tags", err)
		}
	}
	if snap.Tasks, err = l.store.Tasks.ListByClient(ctx, id); err != nil {
		return nil, apperrors.Unavailable("list tasks", err)
	}
	if snap.History, err = l.store.History.ListByClient(ctx, id); err != nil {
		return nil, apperrors.Unavailable("list service history", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := All(snap)[0]
	return &client, nil
}

// LoadMarketing returns the marketing rows with client and tags attached.
func (l *Loader) LoadMarketing(ctx context.Context) ([]models.MarketingMessage, error) {
	messages, err := l.store.Marketing.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("list marketing messages", err)
	}
	clients, err := l.store.Clients.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("list clients", err)
	}
	tags, err := l.store.Tags.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("list tags", err)
	}
	joins, err := l.store.ClientTags.List(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("list client tags", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Marketing(messages, clients, tags, joins), nil
}
