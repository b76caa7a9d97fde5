package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestEventsWindowAndOrder(t *testing.T) {
	due := date(2026, 6, 3, 9)
	outside := date(2026, 7, 1, 9)
	clients := []models.Client{
		{
			ID: uuid.New(), Name: "Caio",
			Tasks: []models.Task{
				{ID: uuid.New(), Description: "send quote", DueDate: &due},
				{ID: uuid.New(), Description: "no date"},
				{ID: uuid.New(), Description: "later", DueDate: &outside},
			},
		},
		{
			ID: uuid.New(), Name: "Ana",
			ServiceHistory: []models.ServiceHistory{
				{ID: uuid.New(), Date: date(2026, 6, 3, 9), Observations: "cut"},
				{ID: uuid.New(), Date: date(2026, 6, 1, 14), Observations: "color"},
			},
		},
	}

	events := Events(clients, date(2026, 6, 1, 12), date(2026, 7, 1, 0), time.UTC)

	require.Len(t, events, 3)
	assert.Equal(t, "color", events[0].Notes)
	assert.Equal(t, "Ana", events[1].ClientName)
	assert.Equal(t, Appointment, events[1].Kind)
	assert.Equal(t, "Caio", events[2].ClientName)
	assert.Equal(t, TaskDue, events[2].Kind)
}

func TestEventsEmptyWindow(t *testing.T) {
	clients := []models.Client{{
		ID: uuid.New(), Name: "Ana",
		ServiceHistory: []models.ServiceHistory{{ID: uuid.New(), Date: date(2026, 6, 1, 9)}},
	}}

	events := Events(clients, date(2026, 6, 2, 0), date(2026, 6, 1, 0), time.UTC)

	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestDaysDistinctAscending(t *testing.T) {
	events := []Event{
		{Date: date(2026, 6, 3, 18)},
		{Date: date(2026, 6, 1, 9)},
		{Date: date(2026, 6, 3, 8)},
	}

	days := Days(events, time.UTC)

	assert.Equal(t, []time.Time{date(2026, 6, 1, 0), date(2026, 6, 3, 0)}, days)
}

func TestDayInLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	got := Day(date(2026, 6, 2, 1), loc)

	assert.Equal(t, 1, got.Day())
	assert.Equal(t, 0, got.Hour())
}
