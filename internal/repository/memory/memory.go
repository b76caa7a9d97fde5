// Package memory is an in-process implementation of the repository
// interfaces. It keeps insertion order, enforces the same cascades as the
// Postgres schema, and is used for local runs without a database and in
// tests.
package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/repository"
)

// DB holds every table.
type DB struct {
	mu         sync.RWMutex
	clients    []models.ClientRow
	tags       []models.TagRow
	clientTags []models.ClientTagRow
	tasks      []models.TaskRow
	history    []models.ServiceHistoryRow
	marketing  []models.MarketingMessageRow
	fail       error
	now        func() time.Time
}

func NewDB() *DB {
	return &DB{now: time.Now}
}

// Store returns repositories backed by db.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Clients:    &ClientStore{db: db},
		Tags:       &TagStore{db: db},
		ClientTags: &ClientTagStore{db: db},
		Tasks:      &TaskStore{db: db},
		History:    &ServiceHistoryStore{db: db},
		Marketing:  &MarketingStore{db: db},
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (db *DB) FailWith(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.fail = err
}

// SetClock overrides the time used for derived timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// Seed appends rows as-is, without any referential checks. Tests use it to
// build inconsistent snapshots.
func (db *DB) Seed(s Seed) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clients = append(db.clients, s.Clients...)
	db.tags = append(db.tags, s.Tags...)
	db.clientTags = append(db.clientTags, s.ClientTags...)
	db.tasks = append(db.tasks, s.Tasks...)
	db.history = append(db.history, s.History...)
	db.marketing = append(db.marketing, s.Marketing...)
}

type Seed struct {
	Clients    []models.ClientRow
	Tags       []models.TagRow
	ClientTags []models.ClientTagRow
	Tasks      []models.TaskRow
	History    []models.ServiceHistoryRow
	Marketing  []models.MarketingMessageRow
}

func (db *DB) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.fail
}

type ClientStore struct{ db *DB }

func (s *ClientStore) List(ctx context.Context) ([]models.ClientRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	return clone(s.db.clients), nil
}

func (s *ClientStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ClientRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	for _, c := range s.db.clients {
		if c.ID == id {
			row := c
			return &row, nil
		}
	}
	return nil, nil
}

func (s *ClientStore) Save(ctx context.Context, client models.ClientRow, tagIDs []uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}

	now := s.db.now()
	idx := slices.IndexFunc(s.db.clients, func(c models.ClientRow) bool { return c.ID == client.ID })
	if idx >= 0 {
		client.CreatedAt = s.db.clients[idx].CreatedAt
		client.UpdatedAt = now
		s.db.clients[idx] = client
	} else {
		if client.CreatedAt.IsZero() {
			client.CreatedAt = now
		}
		client.UpdatedAt = now
		s.db.clients = append(s.db.clients, client)
	}

	s.db.clientTags = slices.DeleteFunc(s.db.clientTags, func(ct models.ClientTagRow) bool {
		return ct.ClientID == client.ID
	})
	for _, tagID := range tagIDs {
		s.db.clientTags = append(s.db.clientTags, models.ClientTagRow{ClientID: client.ID, TagID: tagID})
	}

	firstName, _, _ := strings.Cut(strings.TrimSpace(client.Name), " ")
	idx = slices.IndexFunc(s.db.marketing, func(m models.MarketingMessageRow) bool { return m.ClientID == client.ID })
	if idx >= 0 {
		s.db.marketing[idx].FirstName = firstName
		s.db.marketing[idx].Phone = client.Phone
		s.db.marketing[idx].UpdatedAt = now
	} else {
		s.db.marketing = append(s.db.marketing, models.MarketingMessageRow{
			ID:        uuid.New(),
			ClientID:  client.ID,
			FirstName: firstName,
			Phone:     client.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return nil
}

func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return false, err
	}

	before := len(s.db.clients)
	s.db.clients = slices.DeleteFunc(s.db.clients, func(c models.ClientRow) bool { return c.ID == id })
	if len(s.db.clients) == before {
		return false, nil
	}
	s.db.clientTags = slices.DeleteFunc(s.db.clientTags, func(ct models.ClientTagRow) bool { return ct.ClientID == id })
	s.db.tasks = slices.DeleteFunc(s.db.tasks, func(t models.TaskRow) bool { return t.ClientID == id })
	s.db.history = slices.DeleteFunc(s.db.history, func(h models.ServiceHistoryRow) bool { return h.ClientID == id })
	s.db.marketing = slices.DeleteFunc(s.db.marketing, func(m models.MarketingMessageRow) bool { return m.ClientID == id })
	return true, nil
}

// touch sets a client's updated_at. Callers hold the write lock.
func (db *DB) touch(id uuid.UUID, at time.Time) {
	for i := range db.clients {
		if db.clients[i].ID == id {
			db.clients[i].UpdatedAt = at
		}
	}
}

type TagStore struct{ db *DB }

func (s *TagStore) List(ctx context.Context) ([]models.TagRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	tags := clone(s.db.tags)
	slices.SortStableFunc(tags, func(a, b models.TagRow) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return tags, nil
}

func (s *TagStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.TagRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	tags := make([]models.TagRow, 0, len(ids))
	for _, t := range s.db.tags {
		if slices.Contains(ids, t.ID) {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

func (s *TagStore) Upsert(ctx context.Context, tag models.TagRow) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	idx := slices.IndexFunc(s.db.tags, func(t models.TagRow) bool { return t.ID == tag.ID })
	if idx >= 0 {
		s.db.tags[idx].Name = tag.Name
		return nil
	}
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = s.db.now()
	}
	s.db.tags = append(s.db.tags, tag)
	return nil
}

func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return false, err
	}
	before := len(s.db.tags)
	s.db.tags = slices.DeleteFunc(s.db.tags, func(t models.TagRow) bool { return t.ID == id })
	if len(s.db.tags) == before {
		return false, nil
	}
	s.db.clientTags = slices.DeleteFunc(s.db.clientTags, func(ct models.ClientTagRow) bool { return ct.TagID == id })
	return true, nil
}

type ClientTagStore struct{ db *DB }

func (s *ClientTagStore) List(ctx context.Context) ([]models.ClientTagRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	joins := clone(s.db.clientTags)
	slices.SortStableFunc(joins, compareJoins)
	return joins, nil
}

func (s *ClientTagStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientTagRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	out := make([]models.ClientTagRow, 0)
	for _, ct := range s.db.clientTags {
		if ct.ClientID == clientID {
			out = append(out, ct)
		}
	}
	slices.SortStableFunc(out, compareJoins)
	return out, nil
}

// compareJoins orders join rows by client id then tag id, byte-wise, the
// way Postgres orders uuid columns.
func compareJoins(a, b models.ClientTagRow) int {
	if c := bytes.Compare(a.ClientID[:], b.ClientID[:]); c != 0 {
		return c
	}
	return bytes.Compare(a.TagID[:], b.TagID[:])
}

type TaskStore struct{ db *DB }

func (s *TaskStore) List(ctx context.Context) ([]models.TaskRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	return clone(s.db.tasks), nil
}

func (s *TaskStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.TaskRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	out := make([]models.TaskRow, 0)
	for _, t := range s.db.tasks {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TaskStore) Insert(ctx context.Context, task models.TaskRow) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.db.now()
	}
	s.db.tasks = append(s.db.tasks, task)
	s.db.touch(task.ClientID, task.CreatedAt)
	return nil
}

func (s *TaskStore) SetCompleted(ctx context.Context, id uuid.UUID, completed bool, at time.Time) (*models.TaskRow, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	for i := range s.db.tasks {
		if s.db.tasks[i].ID == id {
			s.db.tasks[i].Completed = completed
			row := s.db.tasks[i]
			s.db.touch(row.ClientID, at)
			return &row, nil
		}
	}
	return nil, nil
}

type ServiceHistoryStore struct{ db *DB }

func (s *ServiceHistoryStore) List(ctx context.Context) ([]models.ServiceHistoryRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	return clone(s.db.history), nil
}

func (s *ServiceHistoryStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.ServiceHistoryRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	out := make([]models.ServiceHistoryRow, 0)
	for _, h := range s.db.history {
		if h.ClientID == clientID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *ServiceHistoryStore) Insert(ctx context.Context, entry models.ServiceHistoryRow) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.db.now()
	}
	s.db.history = append(s.db.history, entry)
	s.db.touch(entry.ClientID, entry.CreatedAt)
	return nil
}

type MarketingStore struct{ db *DB }

func (s *MarketingStore) List(ctx context.Context) ([]models.MarketingMessageRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	if err := s.db.check(ctx); err != nil {
		return nil, err
	}
	return clone(s.db.marketing), nil
}

func (s *MarketingStore) AssignMessage(ctx context.Context, clientIDs []uuid.UUID, message string, at time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.check(ctx); err != nil {
		return 0, err
	}
	var n int64
	for i := range s.db.marketing {
		if slices.Contains(clientIDs, s.db.marketing[i].ClientID) {
			msg := message
			s.db.marketing[i].Message = &msg
			s.db.marketing[i].UpdatedAt = at
			n++
		}
	}
	return n, nil
}

// clone copies s into a fresh non-nil slice.
func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
