package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
	"go.uber.org/zap"
)

// Seeder loads demo data into an empty database.
type Seeder struct {
	store  repository.Store
	logger *zap.Logger
	now    Clock
}

func NewSeeder(store repository.Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, logger: logger, now: systemClock}
}

// Seed inserts demo tags, clients, tasks and history when the clients
// table is empty. It reports whether anything was inserted.
func (s *Seeder) Seed(ctx context.Context) (bool, error) {
	existing, err := s.store.Clients.List(ctx)
	if err != nil {
		return false, storeErr("list clients", err)
	}
	if len(existing) > 0 {
		s.logger.Info("seed skipped, clients already present", zap.Int("clients", len(existing)))
		return false, nil
	}

	now := s.now()
	tagIDs := map[string]uuid.UUID{}
	for _, name := range []string{"VIP", "Retorno", "Indicação", "Promoção"} {
		row := models.TagRow{ID: uuid.New(), Name: name, CreatedAt: now}
		if err := s.store.Tags.Upsert(ctx, row); err != nil {
			return false, storeErr("seed tag", err)
		}
		tagIDs[name] = row.ID
	}

	type demo struct {
		name, phone, source string
		level               models.Level
		age                 time.Duration
		tags                []string
		tasks               []string
		history             []string
	}
	demos := []demo{
		{"Ana Souza", "11987654321", "Instagram", models.LevelCustomer, 40 * 24 * time.Hour,
			[]string{"VIP"}, []string{"Confirmar retorno"}, []string{"Primeira consulta", "Retorno"}},
		{"Bruno Lima", "21998765432", "Indicação", models.LevelLead, 2 * time.Hour,
			[]string{"Indicação"}, []string{"Enviar orçamento"}, nil},
		{"Carla Mendes", "1133334444", "Google", models.LevelCustomer, 10 * 24 * time.Hour,
			[]string{"VIP", "Promoção"}, nil, []string{"Avaliação inicial"}},
		{"Diego Alves", "31991234567", "Site", models.LevelLead, 3 * 24 * time.Hour,
			nil, nil, nil},
	}

	for _, d := range demos {
		created := now.Add(-d.age)
		row := models.ClientRow{
			ID:        uuid.New(),
			Name:      d.name,
			Phone:     d.phone,
			Source:    d.source,
			Level:     string(d.level),
			CreatedAt: created,
		}
		ids := make([]uuid.UUID, 0, len(d.tags))
		for _, t := range d.tags {
			ids = append(ids, tagIDs[t])
		}
		if err := s.store.Clients.Save(ctx, row, ids); err != nil {
			return false, storeErr("seed client", err)
		}

		for i, desc := range d.tasks {
			due := now.AddDate(0, 0, 2+i)
			task := models.TaskRow{ID: uuid.New(), ClientID: row.ID, Description: desc, CreatedAt: now, DueDate: &due}
			if err := s.store.Tasks.Insert(ctx, task); err != nil {
				return false, storeErr("seed task", err)
			}
		}
		for i, obs := range d.history {
			entry := models.ServiceHistoryRow{
				ID:           uuid.New(),
				ClientID:     row.ID,
				Date:         created.AddDate(0, 0, 7*i),
				Observations: obs,
				CreatedAt:    now,
			}
			if err := s.store.History.Insert(ctx, entry); err != nil {
				return false, storeErr("seed service history", err)
			}
		}
	}

	s.logger.Info("seeded demo data", zap.Int("clients", len(demos)), zap.Int("tags", len(tagIDs)))
	return true, nil
}
