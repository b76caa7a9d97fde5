package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/aggregate"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/filter"
	"github.com/lalith-99/clientdesk/internal/live"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
	"github.com/lalith-99/clientdesk/internal/validation"
	"go.uber.org/zap"
)

// ClientInput is the full editable state of a client. Updates replace
// everything, tags included.
type ClientInput struct {
	Name   string      `json:"name" validate:"required,max=200"`
	Phone  string      `json:"phone" validate:"max=40"`
	Source string      `json:"source" validate:"max=100"`
	Level  string      `json:"level" validate:"required,oneof=Lead Customer"`
	TagIDs []uuid.UUID `json:"tag_ids"`
}

type HistoryInput struct {
	Date         time.Time `json:"date" validate:"required"`
	Observations string    `json:"observations" validate:"max=2000"`
}

type TaskInput struct {
	Description string     `json:"description" validate:"required,max=500"`
	DueDate     *time.Time `json:"due_date"`
}

type ClientService struct {
	store     repository.Store
	loader    *aggregate.Loader
	validator *validation.Validator
	live      live.Broadcaster
	logger    *zap.Logger
	now       Clock
}

func NewClientService(store repository.Store, loader *aggregate.Loader, v *validation.Validator, feed live.Broadcaster, logger *zap.Logger) *ClientService {
	return &ClientService{
		store:     store,
		loader:    loader,
		validator: v,
		live:      feed,
		logger:    logger,
		now:       systemClock,
	}
}

// List returns every aggregated client that passes criteria.
func (s *ClientService) List(ctx context.Context, criteria filter.ClientCriteria) ([]models.Client, error) {
	clients, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return criteria.Apply(clients), nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	return s.loader.LoadOne(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	tagIDs, err := s.prepare(ctx, &in)
	if err != nil {
		return nil, err
	}

	row := models.ClientRow{
		ID:     uuid.New(),
		Name:   in.Name,
		Phone:  in.Phone,
		Source: in.Source,
		Level:  in.Level,
	}
	if err := s.store.Clients.Save(ctx, row, tagIDs); err != nil {
		return nil, storeErr("save client", err)
	}

	s.logger.Info("client created", zap.String("client_id", row.ID.String()))
	s.live.Broadcast(live.Event{Action: live.ActionCreated, Entity: "client", ID: row.ID})
	return s.loader.LoadOne(ctx, row.ID)
}

// Update replaces the client's fields and its whole tag set.
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, in ClientInput) (*models.Client, error) {
	tagIDs, err := s.prepare(ctx, &in)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Clients.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get client", err)
	}
	if existing == nil {
		return nil, apperrors.NotFound("client not found")
	}

	row := models.ClientRow{
		ID:        id,
		Name:      in.Name,
		Phone:     in.Phone,
		Source:    in.Source,
		Level:     in.Level,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.store.Clients.Save(ctx, row, tagIDs); err != nil {
		return nil, storeErr("save client", err)
	}

	s.logger.Info("client updated", zap.String("client_id", id.String()), zap.Int("tags", len(tagIDs)))
	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "client", ID: id})
	return s.loader.LoadOne(ctx, id)
}

// prepare trims and validates in, and returns its tag ids deduplicated and
// checked against the tags table.
func (s *ClientService) prepare(ctx context.Context, in *ClientInput) ([]uuid.UUID, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Source = strings.TrimSpace(in.Source)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(in.TagIDs))
	tagIDs := make([]uuid.UUID, 0, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tagIDs = append(tagIDs, id)
	}
	if len(tagIDs) == 0 {
		return tagIDs, nil
	}

	tags, err := s.store.Tags.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, storeErr("get tags", err)
	}
	if len(tags) != len(tagIDs) {
		return nil, apperrors.ValidationWithDetails("validation failed", map[string]string{
			"tag_ids": "contains an unknown tag",
		})
	}
	return tagIDs, nil
}

// Delete removes the client with its tasks, history and tag links.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.Clients.Delete(ctx, id)
	if err != nil {
		return storeErr("delete client", err)
	}
	if !deleted {
		return apperrors.NotFound("client not found")
	}

	s.logger.Info("client deleted", zap.String("client_id", id.String()))
	s.live.Broadcast(live.Event{Action: live.ActionDeleted, Entity: "client", ID: id})
	return nil
}

func (s *ClientService) AddHistory(ctx context.Context, clientID uuid.UUID, in HistoryInput) (*models.ServiceHistory, error) {
	in.Observations = strings.TrimSpace(in.Observations)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, clientID); err != nil {
		return nil, err
	}

	now := s.now()
	row := models.ServiceHistoryRow{
		ID:           uuid.New(),
		ClientID:     clientID,
		Date:         in.Date,
		Observations: in.Observations,
		CreatedAt:    now,
	}
	if err := s.store.History.Insert(ctx, row); err != nil {
		return nil, storeErr("insert service history", err)
	}

	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "client", ID: clientID})
	entry := aggregate.ConvertServiceHistory(row)
	return &entry, nil
}

func (s *ClientService) AddTask(ctx context.Context, clientID uuid.UUID, in TaskInput) (*models.Task, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.mustExist(ctx, clientID); err != nil {
		return nil, err
	}

	now := s.now()
	row := models.TaskRow{
		ID:          uuid.New(),
		ClientID:    clientID,
		Description: in.Description,
		CreatedAt:   now,
		DueDate:     in.DueDate,
	}
	if err := s.store.Tasks.Insert(ctx, row); err != nil {
		return nil, storeErr("insert task", err)
	}

	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "client", ID: clientID})
	task := aggregate.ConvertTask(row)
	return &task, nil
}

// SetTaskCompleted flips the only mutable field of a task.
func (s *ClientService) SetTaskCompleted(ctx context.Context, taskID uuid.UUID, completed bool) (*models.Task, error) {
	row, err := s.store.Tasks.SetCompleted(ctx, taskID, completed, s.now())
	if err != nil {
		return nil, storeErr("update task", err)
	}
	if row == nil {
		return nil, apperrors.NotFound("task not found")
	}

	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "task", ID: taskID})
	task := aggregate.ConvertTask(*row)
	return &task, nil
}

func (s *ClientService) mustExist(ctx context.Context, id uuid.UUID) error {
	row, err := s.store.Clients.GetByID(ctx, id)
	if err != nil {
		return storeErr("get client", err)
	}
	if row == nil {
		return apperrors.NotFound("client not found")
	}
	return nil
}
