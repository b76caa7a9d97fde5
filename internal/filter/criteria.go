package filter

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/models"
)

// ClientCriteria is the filter state of the client list.
// The zero value is "no filters".
type ClientCriteria struct {
	Name  string       `json:"name,omitempty"`
	Tag   string       `json:"tag,omitempty"`
	Level models.Level `json:"level,omitempty"`
}

func (c ClientCriteria) Predicates() []Predicate[models.Client] {
	return []Predicate[models.Client]{
		NameContains(c.Name, func(cl models.Client) string { return cl.Name }),
		TagFilter(c.Tag, func(cl models.Client) []models.Tag { return cl.Tags }),
		LevelEquals(c.Level),
	}
}

func (c ClientCriteria) Apply(clients []models.Client) []models.Client {
	return Apply(clients, c.Predicates()...)
}

func (c ClientCriteria) IsEmpty() bool {
	return c == ClientCriteria{}
}

// Cleared resets every criterion at once.
func (c ClientCriteria) Cleared() ClientCriteria {
	return ClientCriteria{}
}

// MarketingCriteria is the filter state of the marketing list. Name matches
// the client's full name, FirstName the derived first-name column.
type MarketingCriteria struct {
	Name      string      `json:"name,omitempty"`
	FirstName string      `json:"first_name,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Tag       string      `json:"tag,omitempty"`
	Message   MessageMode `json:"message,omitempty"`
}

func (c MarketingCriteria) Predicates() []Predicate[models.MarketingMessage] {
	return []Predicate[models.MarketingMessage]{
		NameContains(c.Name, models.MarketingMessage.DisplayName),
		NameContains(c.FirstName, func(m models.MarketingMessage) string { return m.FirstName }),
		PhoneContains(c.Phone, func(m models.MarketingMessage) string { return m.Phone }),
		TagFilter(c.Tag, func(m models.MarketingMessage) []models.Tag { return m.Tags }),
		MessagePresence(c.Message),
	}
}

func (c MarketingCriteria) Apply(messages []models.MarketingMessage) []models.MarketingMessage {
	return Apply(messages, c.Predicates()...)
}

func (c MarketingCriteria) IsEmpty() bool {
	return c == MarketingCriteria{}
}

func (c MarketingCriteria) Cleared() MarketingCriteria {
	return MarketingCriteria{}
}

// ParseClientCriteria reads name, tag and level from a query string.
func ParseClientCriteria(q url.Values) (ClientCriteria, error) {
	fields := map[string]string{}
	c := ClientCriteria{Name: q.Get("name")}

	tag, err := parseTag(q.Get("tag"))
	if err != nil {
		fields["tag"] = err.Error()
	}
	c.Tag = tag

	if raw := strings.TrimSpace(q.Get("level")); raw != "" {
		level, err := models.ParseLevel(raw)
		if err != nil {
			fields["level"] = "must be one of: Lead Customer"
		}
		c.Level = level
	}

	if len(fields) > 0 {
		return ClientCriteria{}, apperrors.ValidationWithDetails("invalid filter", fields)
	}
	return c, nil
}

// ParseMarketingCriteria reads name, first_name, phone, tag and message from
// a query string.
func ParseMarketingCriteria(q url.Values) (MarketingCriteria, error) {
	fields := map[string]string{}
	c := MarketingCriteria{
		Name:      q.Get("name"),
		FirstName: q.Get("first_name"),
		Phone:     q.Get("phone"),
	}

	tag, err := parseTag(q.Get("tag"))
	if err != nil {
		fields["tag"] = err.Error()
	}
	c.Tag = tag

	switch mode := MessageMode(strings.TrimSpace(q.Get("message"))); mode {
	case AnyMessage, WithMessage, WithoutMessage:
		c.Message = mode
	default:
		fields["message"] = "must be one of: with-message without-message"
	}

	if len(fields) > 0 {
		return MarketingCriteria{}, apperrors.ValidationWithDetails("invalid filter", fields)
	}
	return c, nil
}

// parseTag canonicalizes a tag filter value.
func parseTag(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NoTags {
		return raw, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.New("must be a tag id or " + NoTags)
	}
	return id.String(), nil
}
