package dashboard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func client(name string, level models.Level, created time.Time, tasks ...models.Task) models.Client {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return models.Client{
		ID:             uuid.New(),
		Name:           name,
		Level:          level,
		CreatedAt:      created,
		Tags:           []models.Tag{},
		Tasks:          tasks,
		ServiceHistory: []models.ServiceHistory{},
	}
}

func TestSummaryAndDrillDownAgree(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)
	s := &Summarizer{Location: time.UTC, Now: func() time.Time { return now }}

	pending := models.Task{ID: uuid.New(), Description: "call"}
	clients := []models.Client{
		client("Ana", models.LevelLead, now.Add(-2*time.Hour)),
		client("Beatriz", models.LevelCustomer, now.AddDate(0, 0, -3), pending),
		client("Caio", models.LevelCustomer, now.AddDate(0, -1, 0), models.Task{ID: uuid.New(), Completed: true}),
	}

	sum := s.Summary(clients)

	assert.Equal(t, 3, sum.TotalClients)
	assert.Equal(t, 1, sum.TotalLeads)
	assert.Equal(t, 1, sum.ClientsToday)
	assert.GreaterOrEqual(t, sum.PendingTasks, 1)
	assert.Equal(t, 1, sum.OpenTasks)

	for _, m := range Metrics {
		assert.Len(t, s.DrillDown(m, clients), sum.Get(m), string(m))
	}

	leads := s.DrillDown(TotalLeads, clients)
	require.Len(t, leads, 1)
	assert.Equal(t, "Ana", leads[0].Name)
	assert.Nil(t, leads[0].PendingTask)
}

func TestPendingDrillDownCarriesFirstPendingTask(t *testing.T) {
	s := NewSummarizer(time.UTC)
	done := models.Task{ID: uuid.New(), Completed: true}
	first := models.Task{ID: uuid.New(), Description: "first"}
	second := models.Task{ID: uuid.New(), Description: "second"}
	clients := []models.Client{
		client("Ana", models.LevelLead, time.Now()),
		client("Beatriz", models.LevelCustomer, time.Now(), done, first, second),
	}

	entries := s.DrillDown(PendingTasks, clients)

	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].PendingTask)
	assert.Equal(t, first.ID, entries[0].PendingTask.ID)
}

func TestPendingDrillDownOrdersByDueDate(t *testing.T) {
	now := time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)
	s := &Summarizer{Location: time.UTC, Now: func() time.Time { return now }}
	due := func(d time.Duration) *time.Time { at := now.Add(d); return &at }
	task := func(dueDate *time.Time) models.Task {
		return models.Task{ID: uuid.New(), Description: "call", DueDate: dueDate}
	}

	clients := []models.Client{
		client("Ana", models.LevelLead, now, task(due(48*time.Hour))),
		client("Beatriz", models.LevelLead, now, task(nil)),
		client("Caio", models.LevelLead, now, task(due(-24*time.Hour))),
		client("Davi", models.LevelLead, now, task(due(time.Hour))),
		client("Eva", models.LevelLead, now, task(nil)),
	}

	entries := s.DrillDown(PendingTasks, clients)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Caio", "Beatriz", "Eva", "Davi", "Ana"}, names)

	leads := s.DrillDown(TotalLeads, clients)
	assert.Equal(t, "Ana", leads[0].Name, "other metrics keep input order")
}

func TestClientsTodayUsesLocation(t *testing.T) {
	saoPaulo := mustLoad(t, "America/Sao_Paulo")
	// 01:30 UTC on the 21st is still the 20th in São Paulo (UTC-3).
	now := time.Date(2026, 5, 21, 1, 30, 0, 0, time.UTC)
	// 13:00 UTC on the 20th: today in São Paulo, yesterday in UTC.
	createdMorning := time.Date(2026, 5, 20, 10, 0, 0, 0, saoPaulo)
	clients := []models.Client{client("Ana", models.LevelLead, createdMorning)}

	local := &Summarizer{Location: saoPaulo, Now: func() time.Time { return now }}
	utc := &Summarizer{Location: time.UTC, Now: func() time.Time { return now }}

	assert.Equal(t, 1, local.Summary(clients).ClientsToday)
	assert.Equal(t, 0, utc.Summary(clients).ClientsToday)
}

func TestSummaryEmpty(t *testing.T) {
	s := NewSummarizer(nil)

	assert.Equal(t, Summary{}, s.Summary(nil))
	assert.NotNil(t, s.DrillDown(TotalClients, nil))
}

func TestRecentNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clients := []models.Client{
		client("old", models.LevelLead, base),
		client("new", models.LevelLead, base.AddDate(0, 0, 2)),
		client("mid", models.LevelLead, base.AddDate(0, 0, 1)),
	}

	got := Recent(clients, 2)

	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
	assert.Equal(t, "old", clients[0].Name)
	assert.NotNil(t, Recent(nil, 5))
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("pending_tasks")
	require.NoError(t, err)
	assert.Equal(t, PendingTasks, m)

	_, err = ParseMetric("revenue")
	assert.Error(t, err)
}
