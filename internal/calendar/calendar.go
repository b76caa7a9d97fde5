// Package calendar turns aggregated clients into dated events: service
// appointments from history entries and tasks that carry a due date.
package calendar

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
)

type Kind string

const (
	Appointment Kind = "appointment"
	TaskDue     Kind = "task"
)

// Event is one dated entry on the calendar.
type Event struct {
	Kind       Kind      `json:"kind"`
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	ClientName string    `json:"client_name"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes"`
	// Completed is only meaningful for task events.
	Completed bool `json:"completed,omitempty"`
}

// Day truncates t to midnight in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Events collects every event whose day falls in [Day(from), Day(to)).
// Results are ordered by date, then client name, then kind; ties keep input
// order.
func Events(clients []models.Client, from, to time.Time, loc *time.Location) []Event {
	start, end := Day(from, loc), Day(to, loc)
	in := func(t time.Time) bool {
		d := Day(t, loc)
		return !d.Before(start) && d.Before(end)
	}

	out := make([]Event, 0)
	for _, c := range clients {
		for _, h := range c.ServiceHistory {
			if !in(h.Date) {
				continue
			}
			out = append(out, Event{
				Kind:       Appointment,
				ID:         h.ID,
				ClientID:   c.ID,
				ClientName: c.Name,
				Date:       h.Date,
				Notes:      h.Observations,
			})
		}
		for _, t := range c.Tasks {
			if t.DueDate == nil || !in(*t.DueDate) {
				continue
			}
			out = append(out, Event{
				Kind:       TaskDue,
				ID:         t.ID,
				ClientID:   c.ID,
				ClientName: c.Name,
				Date:       *t.DueDate,
				Notes:      t.Description,
				Completed:  t.Completed,
			})
		}
	}

	slices.SortStableFunc(out, func(a, b Event) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			cmp.Compare(a.ClientName, b.ClientName),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	return out
}

// Days returns the distinct days that have at least one event, ascending.
func Days(events []Event, loc *time.Location) []time.Time {
	out := make([]time.Time, 0, len(events))
	for _, e := range events {
		out = append(out, Day(e.Date, loc))
	}
	slices.SortFunc(out, time.Time.Compare)
	return slices.CompactFunc(out, time.Time.Equal)
}
