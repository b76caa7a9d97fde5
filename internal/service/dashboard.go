package service

import (
	"context"
	"time"

	"github.com/lalith-99/clientdesk/internal/aggregate"
	"github.com/lalith-99/clientdesk/internal/calendar"
	"github.com/lalith-99/clientdesk/internal/dashboard"
	"github.com/lalith-99/clientdesk/internal/models"
)

// RecentLimit is how many clients the dashboard's recent card shows.
const RecentLimit = 5

type Overview struct {
	Summary dashboard.Summary `json:"summary"`
	Recent  []models.Client   `json:"recent_clients"`
}

type CalendarView struct {
	From   time.Time        `json:"from"`
	To     time.Time        `json:"to"`
	Events []calendar.Event `json:"events"`
	Days   []time.Time      `json:"days"`
}

// DashboardService serves the read-only home screen and calendar.
type DashboardService struct {
	loader     *aggregate.Loader
	summarizer *dashboard.Summarizer
}

func NewDashboardService(loader *aggregate.Loader, summarizer *dashboard.Summarizer) *DashboardService {
	return &DashboardService{loader: loader, summarizer: summarizer}
}

func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	clients, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Summary: s.summarizer.Summary(clients),
		Recent:  dashboard.Recent(clients, RecentLimit),
	}, nil
}

// DrillDown lists the clients behind one summary tile.
func (s *DashboardService) DrillDown(ctx context.Context, m dashboard.Metric) ([]dashboard.Entry, error) {
	clients, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarizer.DrillDown(m, clients), nil
}

// Calendar returns events in [from, to) in the configured location.
func (s *DashboardService) Calendar(ctx context.Context, from, to time.Time) (*CalendarView, error) {
	clients, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	loc := s.summarizer.Location
	events := calendar.Events(clients, from, to, loc)
	return &CalendarView{
		From:   calendar.Day(from, loc),
		To:     calendar.Day(to, loc),
		Events: events,
		Days:   calendar.Days(events, loc),
	}, nil
}

// Location is the zone that defines calendar days.
func (s *DashboardService) Location() *time.Location {
	return s.summarizer.Location
}
