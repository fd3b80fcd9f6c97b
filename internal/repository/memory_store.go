package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// MemoryStore is a process-local record store. Documents keep insertion order, which breaks sort ties.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]models.Document
	globals     map[string]models.Document
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]models.Document),
		globals:     make(map[string]models.Document),
		now:         time.Now,
	}
}

// Find filters, sorts and pages documents of a collection.
func (s *MemoryStore) Find(ctx context.Context, collection string, opts models.FindOptions) (*models.FindResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Sort != "" {
		if field, _ := parseSort(opts.Sort); !fieldPattern.MatchString(field) {
			return nil, fmt.Errorf("%w: sort %q", ErrInvalidField, opts.Sort)
		}
	}
	if err := validateWhere(opts.Where); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matched []models.Document
	for _, doc := range s.collections[collection] {
		if matches(doc, opts.Where) {
			matched = append(matched, cloneDocument(doc))
		}
	}
	s.mu.RUnlock()

	page, offset := pageBounds(opts)
	result := &models.FindResult{Docs: []models.Document{}, Pagination: models.NewPagination(page, opts.Limit, len(matched))}
	if opts.Limit == 0 || len(matched) == 0 {
		return result, nil
	}

	if opts.Sort != "" {
		field, desc := parseSort(opts.Sort)
		sort.SliceStable(matched, func(i, j int) bool {
			less, _ := compareValues(matched[i][field], matched[j][field], desc)
			return less
		})
	}

	if opts.Limit > 0 {
		if offset >= len(matched) {
			matched = nil
		} else {
			end := offset + opts.Limit
			if end > len(matched) {
				end = len(matched)
			}
			matched = matched[offset:end]
		}
	}

	for _, doc := range matched {
		stripHidden(collection, doc)
	}
	if err := populate(ctx, s, collection, matched, opts.Depth); err != nil {
		return nil, err
	}
	if matched != nil {
		result.Docs = matched
	}
	return result, nil
}

func validateWhere(w models.Where) error {
	for _, node := range append(append([]models.Where{}, w.And...), w.Or...) {
		if err := validateWhere(node); err != nil {
			return err
		}
	}
	if w.Field != "" && !pathPattern.MatchString(w.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, w.Field)
	}
	return nil
}

// FindByID loads one document.
func (s *MemoryStore) FindByID(ctx context.Context, collection, id string, depth int) (models.Document, error) {
	s.mu.RLock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		s.mu.RUnlock()
		return nil, ErrDocumentNotFound
	}
	doc := cloneDocument(s.collections[collection][idx])
	s.mu.RUnlock()

	stripHidden(collection, doc)
	if err := populate(ctx, s, collection, []models.Document{doc}, depth); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *MemoryStore) loadByIDs(_ context.Context, collection string, ids []string) (map[string]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Document, len(ids))
	for _, id := range ids {
		if idx := s.indexOf(collection, id); idx >= 0 {
			doc := cloneDocument(s.collections[collection][idx])
			stripHidden(collection, doc)
			out[id] = doc
		}
	}
	return out, nil
}

func (s *MemoryStore) indexOf(collection, id string) int {
	for i, doc := range s.collections[collection] {
		if doc.ID() == id {
			return i
		}
	}
	return -1
}

// Create appends a document.
func (s *MemoryStore) Create(_ context.Context, collection string, data models.Document) (models.Document, error) {
	doc, err := normalizeDocument(collection, data)
	if err != nil {
		return nil, err
	}
	if doc.ID() == "" {
		doc["id"] = uuid.NewString()
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	doc["createdAt"] = now
	doc["updatedAt"] = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(collection, doc.ID()) >= 0 {
		return nil, fmt.Errorf("create %s: %w", collection, ErrDuplicateDocument)
	}
	if slug, ok := doc["slug"].(string); ok && slug != "" {
		for _, existing := range s.collections[collection] {
			if existing["slug"] == slug {
				return nil, fmt.Errorf("create %s: %w", collection, ErrDuplicateDocument)
			}
		}
	}
	s.collections[collection] = append(s.collections[collection], doc)
	return cloneDocument(doc), nil
}

// Update shallow-merges patch into the stored document.
func (s *MemoryStore) Update(_ context.Context, collection, id string, patch models.Document) (models.Document, error) {
	body, err := normalizeDocument(collection, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		return nil, ErrDocumentNotFound
	}
	doc := cloneDocument(s.collections[collection][idx])
	for k, v := range bodyOf(body) {
		doc[k] = v
	}
	doc["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)
	s.collections[collection][idx] = doc
	return cloneDocument(doc), nil
}

// Increment adds delta to a numeric field under the store lock.
func (s *MemoryStore) Increment(_ context.Context, collection, id, field string, delta int64) (int64, error) {
	if !fieldPattern.MatchString(field) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(collection, id)
	if idx < 0 {
		return 0, ErrDocumentNotFound
	}
	doc := cloneDocument(s.collections[collection][idx])
	current, _ := doc[field].(float64)
	next := int64(current) + delta
	doc[field] = float64(next)
	doc["updatedAt"] = s.now().UTC().Format(time.RFC3339Nano)
	s.collections[collection][idx] = doc
	return next, nil
}

// ActivateExclusive flips field to true on id and false everywhere else.
func (s *MemoryStore) ActivateExclusive(_ context.Context, collection, id, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(collection, id) < 0 {
		return ErrDocumentNotFound
	}
	now := s.now().UTC().Format(time.RFC3339Nano)
	for i, existing := range s.collections[collection] {
		active := existing.ID() == id
		if current, _ := existing[field].(bool); current == active {
			continue
		}
		doc := cloneDocument(existing)
		doc[field] = active
		doc["updatedAt"] = now
		s.collections[collection][i] = doc
	}
	return nil
}

// FindGlobal returns a copy of the singleton, or an empty document when unset.
func (s *MemoryStore) FindGlobal(ctx context.Context, slug string, depth int) (models.Document, error) {
	s.mu.RLock()
	stored, ok := s.globals[slug]
	s.mu.RUnlock()
	if !ok {
		return models.Document{}, nil
	}

	doc := cloneDocument(stored)
	if err := populate(ctx, s, slug, []models.Document{doc}, depth); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpsertGlobal replaces the singleton.
func (s *MemoryStore) UpsertGlobal(_ context.Context, slug string, data models.Document) (models.Document, error) {
	doc, err := normalizeDocument(slug, data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.globals[slug] = doc
	return cloneDocument(doc), nil
}
