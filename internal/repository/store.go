package repository

import (
	"context"
	"math"

	"github.com/noah-isme/orgcms-api/internal/models"
)

// Store is the record store contract shared by the Postgres and in-memory drivers.
type Store interface {
	Find(ctx context.Context, collection string, opts models.FindOptions) (*models.FindResult, error)
	FindByID(ctx context.Context, collection, id string, depth int) (models.Document, error)
	Create(ctx context.Context, collection string, data models.Document) (models.Document, error)
	Update(ctx context.Context, collection, id string, patch models.Document) (models.Document, error)
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	ActivateExclusive(ctx context.Context, collection, id, field string) error
	FindGlobal(ctx context.Context, slug string, depth int) (models.Document, error)
	UpsertGlobal(ctx context.Context, slug string, data models.Document) (models.Document, error)
}

var (
	_ Store = (*DocumentStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

func pageBounds(opts models.FindOptions) (page, offset int) {
	page = opts.Page
	if page < 1 {
		page = 1
	}
	if opts.Limit > 0 {
		if page-1 > (math.MaxInt-opts.Limit)/opts.Limit {
			// Past any reachable row; callers treat it as an empty page.
			return page, math.MaxInt
		}
		offset = (page - 1) * opts.Limit
	}
	return page, offset
}
