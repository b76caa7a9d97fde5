package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Level is the relationship stage of a client.
//
// Only two values exist. Anything else coming from a form or a row is
// rejected by ParseLevel before it reaches the store.
type Level string

const (
	LevelLead     Level = "Lead"
	LevelCustomer Level = "Customer"
)

// ParseLevel validates a raw level string.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelLead, LevelCustomer:
		return Level(s), nil
	default:
		return "", fmt.Errorf("invalid level %q", s)
	}
}

func (l Level) Valid() bool {
	return l == LevelLead || l == LevelCustomer
}

// Client is the aggregated view of a client row.
//
// Tags, Tasks and ServiceHistory are always non-nil. A client with no
// relations serializes as [] for each of them, never null.
type Client struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Phone          string           `json:"phone"`
	Source         string           `json:"source"`
	Level          Level            `json:"level"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Tags           []Tag            `json:"tags"`
	Tasks          []Task           `json:"tasks"`
	ServiceHistory []ServiceHistory `json:"service_history"`
}

// HasTag reports whether the client carries a tag with the given id.
func (c Client) HasTag(tagID uuid.UUID) bool {
	for _, t := range c.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// FirstPendingTask returns the first task in insertion order that is not
// completed, or nil.
func (c Client) FirstPendingTask() *Task {
	for i := range c.Tasks {
		if !c.Tasks[i].Completed {
			return &c.Tasks[i]
		}
	}
	return nil
}

// Tag is shared by many clients. Names are unique case-insensitively.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Task belongs to one client. After creation only Completed changes.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ServiceHistory is an append-only record of an appointment with a client.
type ServiceHistory struct {
	ID           uuid.UUID `json:"id"`
	ClientID     uuid.UUID `json:"client_id"`
	Date         time.Time `json:"date"`
	Observations string    `json:"observations"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarketingMessage is the derived per-client marketing row with its client
// and the client's tags attached for display and filtering.
//
// Client is nil when the row references a client that no longer exists.
type MarketingMessage struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	FirstName string    `json:"first_name"`
	Phone     string    `json:"phone"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Client    *Client   `json:"client,omitempty"`
	Tags      []Tag     `json:"tags"`
}

// DisplayName is the client's full name, or "" when the client is gone.
func (m MarketingMessage) DisplayName() string {
	if m.Client == nil {
		return ""
	}
	return m.Client.Name
}

// MessageText returns the message or "" when absent.
func (m MarketingMessage) MessageText() string {
	if m.Message == nil {
		return ""
	}
	return *m.Message
}
