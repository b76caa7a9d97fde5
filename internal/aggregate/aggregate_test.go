package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ana, bia, caio uuid.UUID
	vip, promo     uuid.UUID
	snap           Snapshot
}

func newFixture() fixture {
	f := fixture{
		ana: uuid.New(), bia: uuid.New(), caio: uuid.New(),
		vip: uuid.New(), promo: uuid.New(),
	}
	due := t0.Add(48 * time.Hour)
	f.snap = Snapshot{
		Clients: []models.ClientRow{
			{ID: f.ana, Name: "Ana", Phone: "11987654321", Level: "Lead", CreatedAt: t0, UpdatedAt: t0},
			{ID: f.bia, Name: "Beatriz", Phone: "11912345678", Level: "Customer", CreatedAt: t0, UpdatedAt: t0},
			{ID: f.caio, Name: "Caio", Phone: "1133334444", Level: "Customer", CreatedAt: t0, UpdatedAt: t0},
		},
		Tags: []models.TagRow{
			{ID: f.vip, Name: "VIP", CreatedAt: t0},
			{ID: f.promo, Name: "Promo", CreatedAt: t0},
		},
		ClientTags: []models.ClientTagRow{
			{ClientID: f.bia, TagID: f.vip},
			{ClientID: f.bia, TagID: f.promo},
			{ClientID: f.caio, TagID: f.vip},
		},
		Tasks: []models.TaskRow{
			{ID: uuid.New(), ClientID: f.ana, Description: "call back", CreatedAt: t0, DueDate: &due},
			{ID: uuid.New(), ClientID: f.caio, Description: "send quote", Completed: true, CreatedAt: t0},
		},
		History: []models.ServiceHistoryRow{
			{ID: uuid.New(), ClientID: f.bia, Date: t0, Observations: "first visit", CreatedAt: t0},
		},
	}
	return f
}

func TestAllKeepsOrderAndAttachesRelations(t *testing.T) {
	f := newFixture()

	clients := All(f.snap)

	require.Len(t, clients, 3)
	assert.Equal(t, []string{"Ana", "Beatriz", "Caio"}, names(clients))

	assert.Empty(t, clients[0].Tags)
	assert.Len(t, clients[0].Tasks, 1)
	assert.Empty(t, clients[0].ServiceHistory)

	assert.Equal(t, []uuid.UUID{f.vip, f.promo}, tagIDs(clients[1]))
	assert.Len(t, clients[1].ServiceHistory, 1)

	assert.Equal(t, []uuid.UUID{f.vip}, tagIDs(clients[2]))
	assert.True(t, clients[2].Tasks[0].Completed)
}

func TestAllRelationSlicesNeverNil(t *testing.T) {
	clients := All(Snapshot{Clients: []models.ClientRow{{ID: uuid.New(), Name: "Solo"}}})

	require.Len(t, clients, 1)
	assert.NotNil(t, clients[0].Tags)
	assert.NotNil(t, clients[0].Tasks)
	assert.NotNil(t, clients[0].ServiceHistory)
}

func TestAssembleSkipsDanglingRows(t *testing.T) {
	f := newFixture()
	ghost := uuid.New()
	f.snap.ClientTags = append(f.snap.ClientTags,
		models.ClientTagRow{ClientID: ghost, TagID: f.vip},
		models.ClientTagRow{ClientID: f.ana, TagID: uuid.New()},
	)
	f.snap.Tasks = append(f.snap.Tasks, models.TaskRow{ID: uuid.New(), ClientID: ghost})
	f.snap.History = append(f.snap.History, models.ServiceHistoryRow{ID: uuid.New(), ClientID: ghost})

	clients, stats := Assemble(f.snap)

	assert.Equal(t, Stats{SkippedClientTags: 2, SkippedTasks: 1, SkippedHistory: 1}, stats)
	if diff := cmp.Diff(All(newFixtureLike(f)), clients); diff != "" {
		t.Errorf("dangling rows changed the result (-want +got):\n%s", diff)
	}
}

// newFixtureLike rebuilds f's snapshot without the rows added by the test.
func newFixtureLike(f fixture) Snapshot {
	s := f.snap
	s.ClientTags = s.ClientTags[:3]
	s.Tasks = s.Tasks[:2]
	s.History = s.History[:1]
	return s
}

func TestAssembleEveryValidRowLandsOnce(t *testing.T) {
	f := newFixture()

	clients := All(f.snap)

	var tags, tasks, history int
	for _, c := range clients {
		tags += len(c.Tags)
		tasks += len(c.Tasks)
		history += len(c.ServiceHistory)
	}
	assert.Equal(t, len(f.snap.ClientTags), tags)
	assert.Equal(t, len(f.snap.Tasks), tasks)
	assert.Equal(t, len(f.snap.History), history)
}

func TestAssembleDuplicateJoinAttachesOnce(t *testing.T) {
	f := newFixture()
	f.snap.ClientTags = append(f.snap.ClientTags, models.ClientTagRow{ClientID: f.bia, TagID: f.vip})

	clients := All(f.snap)

	assert.Equal(t, []uuid.UUID{f.vip, f.promo}, tagIDs(clients[1]))
}

func TestDeletedTagDisappearsFromEveryClient(t *testing.T) {
	f := newFixture()
	before := All(f.snap)

	// Tag row removed while join rows still reference it.
	f.snap.Tags = f.snap.Tags[1:]
	after := All(f.snap)

	for i := range after {
		assert.False(t, after[i].HasTag(f.vip), after[i].Name)
		assert.Equal(t, before[i].Tasks, after[i].Tasks)
		assert.Equal(t, before[i].ServiceHistory, after[i].ServiceHistory)
	}
}

func TestLoadOneMatchesLoadAll(t *testing.T) {
	f := newFixture()
	db := memory.NewDB()
	db.Seed(memory.Seed{
		Clients:    f.snap.Clients,
		Tags:       f.snap.Tags,
		ClientTags: f.snap.ClientTags,
		Tasks:      f.snap.Tasks,
		History:    f.snap.History,
	})
	loader := NewLoader(db.Store(), zap.NewNop())
	ctx := context.Background()

	all, err := loader.LoadAll(ctx)
	require.NoError(t, err)

	for _, want := range all {
		got, err := loader.LoadOne(ctx, want.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(want, *got); diff != "" {
			t.Errorf("LoadOne(%s) differs from LoadAll (-all +one):\n%s", want.Name, diff)
		}
	}
}

func TestLoadOneMatchesLoadAllWithJoinsOutOfIDOrder(t *testing.T) {
	f := newFixture()
	low := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	mid := uuid.MustParse("77777777-0000-4000-8000-000000000001")
	high := uuid.MustParse("ffffffff-0000-4000-8000-000000000001")
	db := memory.NewDB()
	db.Seed(memory.Seed{
		Clients: f.snap.Clients,
		Tags: []models.TagRow{
			{ID: high, Name: "Alta", CreatedAt: t0},
			{ID: low, Name: "Baixa", CreatedAt: t0},
			{ID: mid, Name: "Média", CreatedAt: t0},
		},
		// Inserted newest tag first, the reverse of id order.
		ClientTags: []models.ClientTagRow{
			{ClientID: f.caio, TagID: high},
			{ClientID: f.bia, TagID: high},
			{ClientID: f.bia, TagID: mid},
			{ClientID: f.bia, TagID: low},
		},
	})
	loader := NewLoader(db.Store(), zap.NewNop())
	ctx := context.Background()

	all, err := loader.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{low, mid, high}, tagIDs(all[1]))

	for _, want := range all {
		got, err := loader.LoadOne(ctx, want.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(want, *got); diff != "" {
			t.Errorf("LoadOne(%s) differs from LoadAll (-all +one):\n%s", want.Name, diff)
		}
	}
}

func TestLoadOneNotFound(t *testing.T) {
	loader := NewLoader(memory.NewDB().Store(), zap.NewNop())

	client, err := loader.LoadOne(context.Background(), uuid.New())

	assert.Nil(t, client)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestLoadAllStoreFailure(t *testing.T) {
	db := memory.NewDB()
	db.FailWith(errors.New("connection refused"))
	loader := NewLoader(db.Store(), zap.NewNop())

	clients, err := loader.LoadAll(context.Background())

	assert.Nil(t, clients)
	assert.Equal(t, apperrors.CodeUnavailable, apperrors.CodeOf(err))
}

func TestLoadAllDiscardsCancelledResult(t *testing.T) {
	loader := NewLoader(memory.NewDB().Store(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clients, err := loader.LoadAll(ctx)

	assert.Nil(t, clients)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarketingAttachesClientAndTags(t *testing.T) {
	f := newFixture()
	msg := "promo de março"
	rows := []models.MarketingMessageRow{
		{ID: uuid.New(), ClientID: f.bia, FirstName: "Beatriz", Phone: "11912345678", Message: &msg},
		{ID: uuid.New(), ClientID: f.ana, FirstName: "Ana", Phone: "11987654321"},
		{ID: uuid.New(), ClientID: uuid.New(), FirstName: "Ghost"},
	}

	out := Marketing(rows, f.snap.Clients, f.snap.Tags, f.snap.ClientTags)

	require.Len(t, out, 3)
	assert.Equal(t, "Beatriz", out[0].DisplayName())
	assert.Len(t, out[0].Tags, 2)
	assert.Equal(t, "promo de março", out[0].MessageText())
	assert.NotNil(t, out[1].Tags)
	assert.Empty(t, out[1].Tags)
	assert.Nil(t, out[2].Client)
	assert.Empty(t, out[2].Tags)
}

func names(clients []models.Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.Name
	}
	return out
}

func tagIDs(c models.Client) []uuid.UUID {
	out := make([]uuid.UUID, len(c.Tags))
	for i, t := range c.Tags {
		out[i] = t.ID
	}
	return out
}
