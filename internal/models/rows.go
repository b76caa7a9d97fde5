package models

import (
	"time"

	"github.com/google/uuid"
)

// Row types mirror the tables one-to-one. The repository layer scans into
// these and nothing else; turning them into Client/Tag/... is the job of
// the aggregate package.

type ClientRow struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Source    string
	Level     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TagRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// ClientTagRow is the client_tags join table.
type ClientTagRow struct {
	ClientID uuid.UUID
	TagID    uuid.UUID
}

type TaskRow struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Description string
	Completed   bool
	CreatedAt   time.Time
	DueDate     *time.Time
}

type ServiceHistoryRow struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	Date         time.Time
	Observations string
	CreatedAt    time.Time
}

type MarketingMessageRow struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	FirstName string
	Phone     string
	Message   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
