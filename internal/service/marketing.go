package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/aggregate"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/filter"
	"github.com/lalith-99/clientdesk/internal/live"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
	"github.com/lalith-99/clientdesk/internal/validation"
	"github.com/lalith-99/clientdesk/internal/webhook"
	"go.uber.org/zap"
)

type AssignInput struct {
	ClientIDs []uuid.UUID `json:"client_ids" validate:"required,min=1"`
	Message   string      `json:"message" validate:"required,max=1000"`
}

type WebhookInput struct {
	URL       string      `json:"url" validate:"required,url"`
	ClientIDs []uuid.UUID `json:"client_ids" validate:"required,min=1"`
}

// WebhookSender delivers a marketing selection.
type WebhookSender interface {
	Send(ctx context.Context, target string, payloads []webhook.Payload) error
}

type MarketingService struct {
	marketing repository.MarketingRepository
	loader    *aggregate.Loader
	sender    WebhookSender
	validator *validation.Validator
	live      live.Broadcaster
	logger    *zap.Logger
	now       Clock
}

func NewMarketingService(marketing repository.MarketingRepository, loader *aggregate.Loader, sender WebhookSender, v *validation.Validator, feed live.Broadcaster, logger *zap.Logger) *MarketingService {
	return &MarketingService{
		marketing: marketing,
		loader:    loader,
		sender:    sender,
		validator: v,
		live:      feed,
		logger:    logger,
		now:       systemClock,
	}
}

// List returns marketing rows with client and tags, filtered by criteria.
func (s *MarketingService) List(ctx context.Context, criteria filter.MarketingCriteria) ([]models.MarketingMessage, error) {
	messages, err := s.loader.LoadMarketing(ctx)
	if err != nil {
		return nil, err
	}
	return criteria.Apply(messages), nil
}

// Assign sets the same message on every selected client's row and returns
// how many rows changed.
func (s *MarketingService) Assign(ctx context.Context, in AssignInput) (int64, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validator.Validate(in); err != nil {
		return 0, err
	}

	n, err := s.marketing.AssignMessage(ctx, in.ClientIDs, in.Message, s.now())
	if err != nil {
		return 0, storeErr("assign marketing message", err)
	}

	s.logger.Info("marketing message assigned",
		zap.Int("selected", len(in.ClientIDs)),
		zap.Int64("updated", n),
	)
	s.live.Broadcast(live.Event{Action: live.ActionUpdated, Entity: "marketing"})
	return n, nil
}

// SendToWebhook posts first name, phone and message of every selected row
// that has a non-blank message. It returns how many entries were sent.
func (s *MarketingService) SendToWebhook(ctx context.Context, in WebhookInput) (int, error) {
	in.URL = strings.TrimSpace(in.URL)
	if err := s.validator.Validate(in); err != nil {
		return 0, err
	}
	if err := webhook.ValidateURL(in.URL); err != nil {
		return 0, apperrors.ValidationWithDetails("validation failed", map[string]string{"url": err.Error()})
	}

	messages, err := s.loader.LoadMarketing(ctx)
	if err != nil {
		return 0, err
	}
	payloads := Payloads(messages, in.ClientIDs)
	if len(payloads) == 0 {
		return 0, apperrors.Validation("no selected client has a message to send")
	}

	if err := s.sender.Send(ctx, in.URL, payloads); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		return 0, apperrors.Unavailable("send to webhook", err)
	}
	return len(payloads), nil
}

// Payloads picks the selected rows with a non-blank message, in list order.
func Payloads(messages []models.MarketingMessage, clientIDs []uuid.UUID) []webhook.Payload {
	selected := make(map[uuid.UUID]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		selected[id] = struct{}{}
	}

	withMessage := filter.MessagePresence(filter.WithMessage)
	out := make([]webhook.Payload, 0)
	for _, m := range messages {
		if _, ok := selected[m.ClientID]; !ok || !withMessage(m) {
			continue
		}
		out = append(out, webhook.Payload{
			FirstName: m.FirstName,
			Phone:     m.Phone,
			Message:   m.MessageText(),
		})
	}
	return out
}
