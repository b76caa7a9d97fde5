// Package dashboard derives the summary tiles and their drill-down lists
// from aggregated clients.
//
// Each metric is backed by exactly one predicate. The count and the
// drill-down for a metric both come from that predicate, so they cannot
// disagree.
package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/lalith-99/clientdesk/internal/filter"
	"github.com/lalith-99/clientdesk/internal/models"
)

// Metric names a summary tile.
type Metric string

const (
	TotalClients Metric = "total_clients"
	TotalLeads   Metric = "total_leads"
	ClientsToday Metric = "clients_today"
	PendingTasks Metric = "pending_tasks"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{TotalClients, TotalLeads, ClientsToday, PendingTasks}

func ParseMetric(s string) (Metric, error) {
	m := Metric(s)
	if !slices.Contains(Metrics, m) {
		return "", fmt.Errorf("unknown metric %q", s)
	}
	return m, nil
}

// Summary holds one count per metric.
type Summary struct {
	TotalClients int `json:"total_clients"`
	TotalLeads   int `json:"total_leads"`
	ClientsToday int `json:"clients_today"`
	PendingTasks int `json:"pending_tasks"`
	// OpenTasks is the number of incomplete tasks across all clients,
	// shown under the pending tile.
	OpenTasks int `json:"open_tasks"`
}

// Get returns the count for m.
func (s Summary) Get(m Metric) int {
	switch m {
	case TotalClients:
		return s.TotalClients
	case TotalLeads:
		return s.TotalLeads
	case ClientsToday:
		return s.ClientsToday
	case PendingTasks:
		return s.PendingTasks
	default:
		return 0
	}
}

// Entry is one row of a drill-down list. PendingTask is set only for the
// pending_tasks metric and is the client's first incomplete task.
type Entry struct {
	models.Client
	PendingTask *models.Task `json:"pending_task,omitempty"`
}

// Summarizer computes metrics relative to a clock and a location. The
// location decides which calendar day is "today".
type Summarizer struct {
	Location *time.Location
	Now      func() time.Time
}

func NewSummarizer(loc *time.Location) *Summarizer {
	if loc == nil {
		loc = time.Local
	}
	return &Summarizer{Location: loc, Now: time.Now}
}

// Predicate returns the predicate behind m, or nil for total_clients.
func (s *Summarizer) Predicate(m Metric) filter.Predicate[models.Client] {
	switch m {
	case TotalLeads:
		return filter.LevelEquals(models.LevelLead)
	case ClientsToday:
		today := s.day(s.Now())
		return func(c models.Client) bool { return s.day(c.CreatedAt).Equal(today) }
	case PendingTasks:
		return func(c models.Client) bool { return c.FirstPendingTask() != nil }
	default:
		return nil
	}
}

// Summary counts every metric over clients.
func (s *Summarizer) Summary(clients []models.Client) Summary {
	out := Summary{
		TotalClients: filter.Count(clients, s.Predicate(TotalClients)),
		TotalLeads:   filter.Count(clients, s.Predicate(TotalLeads)),
		ClientsToday: filter.Count(clients, s.Predicate(ClientsToday)),
		PendingTasks: filter.Count(clients, s.Predicate(PendingTasks)),
	}
	for _, c := range clients {
		for _, t := range c.Tasks {
			if !t.Completed {
				out.OpenTasks++
			}
		}
	}
	return out
}

// DrillDown lists the clients counted by m, in input order. The pending
// tasks list is instead ordered by the due date of each client's first
// pending task, where no due date counts as now.
func (s *Summarizer) DrillDown(m Metric, clients []models.Client) []Entry {
	matched := filter.Apply(clients, s.Predicate(m))
	out := make([]Entry, 0, len(matched))
	for _, c := range matched {
		e := Entry{Client: c}
		if m == PendingTasks {
			e.PendingTask = c.FirstPendingTask()
		}
		out = append(out, e)
	}
	if m == PendingTasks {
		now := s.Now()
		slices.SortStableFunc(out, func(a, b Entry) int {
			return dueOr(a.PendingTask, now).Compare(dueOr(b.PendingTask, now))
		})
	}
	return out
}

func dueOr(t *models.Task, now time.Time) time.Time {
	if t == nil || t.DueDate == nil {
		return now
	}
	return *t.DueDate
}

// day truncates t to midnight in the summarizer's location.
func (s *Summarizer) day(t time.Time) time.Time {
	t = t.In(s.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.Location)
}

// Recent returns up to n clients, newest CreatedAt first. Ties keep input
// order.
func Recent(clients []models.Client, n int) []models.Client {
	sorted := slices.Clone(clients)
	slices.SortStableFunc(sorted, func(a, b models.Client) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Client{}
	}
	return sorted
}
