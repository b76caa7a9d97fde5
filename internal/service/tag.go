package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/aggregate"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/live"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
	"github.com/lalith-99/clientdesk/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

type TagInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

// TagService manages the shared tag vocabulary. Tag names are unique
// ignoring case.
type TagService struct {
	tags      repository.TagRepository
	validator *validation.Validator
	live      live.Broadcaster
	logger    *zap.Logger
	now       Clock
}

func NewTagService(tags repository.TagRepository, v *validation.Validator, feed live.Broadcaster, logger *zap.Logger) *TagService {
	return &TagService{
		tags:      tags,
		validator: v,
		live:      feed,
		logger:    logger,
		now:       systemClock,
	}
}

// List returns every tag ordered by name.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.tags.List(ctx)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	tags := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, aggregate.ConvertTag(r))
	}
	return tags, nil
}

// Create rejects a duplicate name before touching the store.
func (s *TagService) Create(ctx context.Context, in TagInput) (*models.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	rows, err := s.tags.List(ctx)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	if err := checkDuplicate(rows, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	row := models.TagRow{ID: uuid.New(), Name: in.Name, CreatedAt: s.now()}
	if err := s.tags.Upsert(ctx, row); err != nil {
		return nil, storeErr("save tag", err)
	}

	s.logger.Info("tag created", zap.String("tag_id", row.ID.String()), zap.String("name", row.Name))
	s.live.Broadcast(live.Event{Action: live.ActionCreated, Entity: "tag", ID: row.ID})
	tag := aggregate.ConvertTag(row)
	return &tag, nil
}

// Rename changes the tag's name. Renaming to the current name in another
// case is allowed.
func (s *TagService) Rename(ctx context.Context, id uuid.UUID, in TagInput) (*models.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	rows, err := s.tags.List(ctx)
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	var current *models.TagRow
	for i := range rows {
		if rows[i].ID == id {
			current = &rows[i]
			break
		}
	}
	if current == nil {
		return nil, apperrors.NotFound("tag not found")
	}
	if err := checkDuplicate(rows, in.Name, id); err != nil {
		return nil, err
	}

	row := *current
	row.Name = in.Name
	if err := s.tags.Upsert(ctx, row); err != nil {
		return nil, storeErr("save tag", err)
	}

	s.logger.Info("tag renamed", zap.String("tag_id", id.String()), zap.String("name", row.Name))
	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "tag", ID: id})
	tag := aggregate.ConvertTag(row)
	return &tag, nil
}

// Delete removes the tag from every client and then the tag itself.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.tags.Delete(ctx, id)
	if err != nil {
		return storeErr("delete tag", err)
	}
	if !deleted {
		return apperrors.NotFound("tag not found")
	}

	s.logger.Info("tag deleted", zap.String("tag_id", id.String()))
	s.live.Broadcast(live.Event{Action: live.ActionDeleted, Entity: "tag", ID: id})
	return nil
}

// checkDuplicate reports ALREADY_EXISTS if name matches another tag's name
// ignoring case. self is excluded so a tag can be renamed onto itself.
func checkDuplicate(rows []models.TagRow, name string, self uuid.UUID) error {
	caser := cases.Fold()
	folded := caser.String(name)
	for _, r := range rows {
		if r.ID != self && caser.String(r.Name) == folded {
			return apperrors.AlreadyExists("tag name already exists").
				WithDetails(map[string]string{"name": "a tag with this name already exists"})
		}
	}
	return nil
}
