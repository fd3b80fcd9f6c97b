package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/orgcms-api/internal/models"
)

const uniqueViolation = "23505"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		seq BIGSERIAL,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS documents_collection_slug_idx ON documents (collection, (data->>'slug')) WHERE data ? 'slug'`,
	`CREATE TABLE IF NOT EXISTS globals (
		slug TEXT PRIMARY KEY,
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

type documentRow struct {
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r documentRow) document() (models.Document, error) {
	doc := models.Document{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", r.ID, err)
		}
	}
	doc["id"] = r.ID
	doc["createdAt"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	doc["updatedAt"] = r.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return doc, nil
}

// DocumentStore keeps every collection as JSONB documents in Postgres.
type DocumentStore struct {
	db      *sqlx.DB
	timeout time.Duration
	now     func() time.Time
}

// NewDocumentStore instantiates the Postgres record store. A zero timeout leaves deadlines to the caller.
func NewDocumentStore(db *sqlx.DB, timeout time.Duration) *DocumentStore {
	return &DocumentStore{db: db, timeout: timeout, now: time.Now}
}

func (s *DocumentStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Migrate creates the tables backing the store.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate documents schema: %w", err)
		}
	}
	return nil
}

// Find returns a page of documents matching opts. Limit 0 only counts.
func (s *DocumentStore) Find(ctx context.Context, collection string, opts models.FindOptions) (*models.FindResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b := &sqlBuilder{}
	base := "FROM documents WHERE collection = " + b.bind(collection)
	cond, err := b.compile(opts.Where)
	if err != nil {
		return nil, err
	}
	if cond != "" {
		base += " AND " + cond
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, b.args...); err != nil {
		return nil, fmt.Errorf("count %s: %w", collection, err)
	}

	page, offset := pageBounds(opts)
	result := &models.FindResult{Docs: []models.Document{}, Pagination: models.NewPagination(page, opts.Limit, total)}
	if opts.Limit == 0 || total == 0 || (opts.Limit > 0 && offset >= total) {
		return result, nil
	}

	order, err := orderClause(opts.Sort)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, data, created_at, updated_at %s %s", base, order)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, offset)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, b.args...); err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		stripHidden(collection, doc)
		docs = append(docs, doc)
	}
	if err := populate(ctx, s, collection, docs, opts.Depth); err != nil {
		return nil, err
	}
	result.Docs = docs
	return result, nil
}

// FindByID loads a single document.
func (s *DocumentStore) FindByID(ctx context.Context, collection, id string, depth int) (models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const query = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	doc, err := row.document()
	if err != nil {
		return nil, err
	}
	stripHidden(collection, doc)
	if err := populate(ctx, s, collection, []models.Document{doc}, depth); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStore) loadByIDs(ctx context.Context, collection string, ids []string) (map[string]models.Document, error) {
	const query = `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = ANY($2)`
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, collection, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load %s relations: %w", collection, err)
	}
	out := make(map[string]models.Document, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		stripHidden(collection, doc)
		out[row.ID] = doc
	}
	return out, nil
}

// Create inserts a document, assigning an id when none is given.
func (s *DocumentStore) Create(ctx context.Context, collection string, data models.Document) (models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, err := normalizeDocument(collection, data)
	if err != nil {
		return nil, err
	}
	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(bodyOf(doc))
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", collection, err)
	}

	now := s.now().UTC()
	const query = `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, payload, now); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("create %s: %w", collection, ErrDuplicateDocument)
		}
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}

	return documentRow{ID: id, Data: payload, CreatedAt: now, UpdatedAt: now}.document()
}

// Update shallow-merges patch into the stored document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch models.Document) (models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, err := normalizeDocument(collection, patch)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(bodyOf(doc))
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", collection, err)
	}

	const query = `UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2 RETURNING id, data, created_at, updated_at`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id, payload, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	return row.document()
}

// Increment atomically adds delta to a numeric field and returns the new value.
func (s *DocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error) {
	if !fieldPattern.MatchString(field) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	const query = `UPDATE documents SET data = jsonb_set(data, ARRAY[$3::text], to_jsonb(COALESCE((data->>$3)::bigint, 0) + $4)), updated_at = $5 WHERE collection = $1 AND id = $2 RETURNING (data->>$3)::bigint`
	var value int64
	if err := s.db.GetContext(ctx, &value, query, collection, id, field, delta, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrDocumentNotFound
		}
		return 0, fmt.Errorf("increment %s.%s: %w", collection, field, err)
	}
	return value, nil
}

// ActivateExclusive sets field=true on id and false on every other document of the collection in one transaction.
func (s *DocumentStore) ActivateExclusive(ctx context.Context, collection, id, field string) (err error) {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE documents SET data = jsonb_set(data, ARRAY[$3::text], 'false'::jsonb), updated_at = $4 WHERE collection = $1 AND id <> $2 AND data->>$3 = 'true'`, collection, id, field, now); err != nil {
		return fmt.Errorf("deactivate other %s: %w", collection, err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE documents SET data = jsonb_set(data, ARRAY[$3::text], 'true'::jsonb), updated_at = $4 WHERE collection = $1 AND id = $2`, collection, id, field, now)
	if err != nil {
		return fmt.Errorf("activate %s %s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate %s %s: %w", collection, id, err)
	}
	if affected == 0 {
		err = ErrDocumentNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit activate tx: %w", err)
	}
	return nil
}

// FindGlobal returns a singleton document; an unset global yields an empty document.
func (s *DocumentStore) FindGlobal(ctx context.Context, slug string, depth int) (models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var raw []byte
	if err := s.db.GetContext(ctx, &raw, `SELECT data FROM globals WHERE slug = $1`, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Document{}, nil
		}
		return nil, fmt.Errorf("find global %s: %w", slug, err)
	}
	doc := models.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode global %s: %w", slug, err)
	}
	if err := populate(ctx, s, slug, []models.Document{doc}, depth); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpsertGlobal replaces a singleton document.
func (s *DocumentStore) UpsertGlobal(ctx context.Context, slug string, data models.Document) (models.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	doc, err := normalizeDocument(slug, data)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode global %s: %w", slug, err)
	}
	const query = `INSERT INTO globals (slug, data, updated_at) VALUES ($1, $2, $3) ON CONFLICT (slug) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, slug, payload, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert global %s: %w", slug, err)
	}
	return doc, nil
}
