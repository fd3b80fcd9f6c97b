package service

import (
	"context"
	"sync"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/repository"
)

// faultyStore wraps the in-memory store, recording queries and injecting failures.
type faultyStore struct {
	*repository.MemoryStore

	mu           sync.Mutex
	finds        []models.FindOptions
	findErr      error
	createErr    error
	incrementErr error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{MemoryStore: repository.NewMemoryStore()}
}

func (s *faultyStore) Find(ctx context.Context, collection string, opts models.FindOptions) (*models.FindResult, error) {
	s.mu.Lock()
	s.finds = append(s.finds, opts)
	err := s.findErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.MemoryStore.Find(ctx, collection, opts)
}

func (s *faultyStore) Create(ctx context.Context, collection string, data models.Document) (models.Document, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.MemoryStore.Create(ctx, collection, data)
}

func (s *faultyStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	if s.incrementErr != nil {
		return 0, s.incrementErr
	}
	return s.MemoryStore.Increment(ctx, collection, id, field, delta)
}

func (s *faultyStore) findCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.finds)
}

func (s *faultyStore) lastFind() models.FindOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds[len(s.finds)-1]
}

func (s *faultyStore) mustCreate(collection string, docs ...models.Document) {
	for _, doc := range docs {
		if _, err := s.MemoryStore.Create(context.Background(), collection, doc); err != nil {
			panic(err)
		}
	}
}

type mockRecorder struct {
	mu         sync.Mutex
	views      []string
	activities []models.ActivityLog
}

func (m *mockRecorder) RecordView(collection, id, viewer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views = append(m.views, collection+"/"+id+"@"+viewer)
}

func (m *mockRecorder) RecordActivity(entry models.ActivityLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, entry)
}

type mockMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *mockMetrics) RecordSideEffect(kind, outcome string) {
	m.inc(kind + ":" + outcome)
}

func (m *mockMetrics) RecordContactSubmission(outcome string) {
	m.inc("contact:" + outcome)
}

func (m *mockMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *mockMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}
