package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

const (
	defaultListLimit    = 10
	defaultGalleryLimit = 12
	defaultLatestLimit  = 5
	maxListLimit        = 100
)

// ListQuery carries caller-supplied listing options. A nil Limit selects the collection default;
// a zero Limit only counts.
type ListQuery struct {
	Category   string
	Type       string
	Tag        string
	Page       int
	Limit      *int
	Privileged bool
}

// listingPolicy describes how one collection is exposed publicly.
type listingPolicy struct {
	noun         string
	sort         string
	defaultLimit int
	filters      map[string]string
	searchFields []string
	visibility   func(privileged bool) models.Where
}

func published(bool) models.Where {
	return models.Eq("status", models.StatusPublished)
}

var listingPolicies = map[string]listingPolicy{
	models.CollectionPosts: {
		noun:         "post",
		sort:         "-publishedDate",
		defaultLimit: defaultListLimit,
		filters:      map[string]string{"category": "category", "tag": "tags.tag"},
		searchFields: []string{"title", "excerpt"},
		visibility:   published,
	},
	models.CollectionPages: {
		noun:         "page",
		sort:         "-createdAt",
		defaultLimit: defaultListLimit,
		searchFields: []string{"title"},
		visibility:   published,
	},
	models.CollectionGalleries: {
		noun:         "gallery",
		sort:         "-eventDate",
		defaultLimit: defaultGalleryLimit,
		filters:      map[string]string{"type": "type"},
		searchFields: []string{"title", "description"},
		visibility:   func(bool) models.Where { return models.Where{} },
	},
	models.CollectionDocuments: {
		noun:         "document",
		sort:         "-uploadDate",
		defaultLimit: defaultListLimit,
		filters:      map[string]string{"category": "category", "tag": "tags.tag"},
		searchFields: []string{"title", "description"},
		visibility: func(privileged bool) models.Where {
			if privileged {
				return models.Where{}
			}
			return models.Eq("isPublic", true)
		},
	},
}

type viewRecorder interface {
	RecordView(collection, id, viewer string)
}

// ContentService composes visibility-safe listings, searches and lookups over publishable content.
type ContentService struct {
	store    documentFinder
	recorder viewRecorder
	logger   *zap.Logger
}

// NewContentService creates the content query composer.
func NewContentService(store documentFinder, recorder viewRecorder, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{store: store, recorder: recorder, logger: logger}
}

// Compose builds find options for a listing. The mandatory visibility filter is always AND-ed in;
// caller filters can only narrow it.
func (s *ContentService) Compose(collection string, q ListQuery, extra ...models.Where) (models.FindOptions, error) {
	policy, ok := listingPolicies[collection]
	if !ok {
		return models.FindOptions{}, appErrors.Clone(appErrors.ErrInvalidQuery, "unknown collection")
	}

	nodes := []models.Where{policy.visibility(q.Privileged)}
	params := []struct{ name, value string }{{"category", q.Category}, {"type", q.Type}, {"tag", q.Tag}}
	for _, param := range params {
		field, allowed := policy.filters[param.name]
		value := strings.TrimSpace(param.value)
		if !allowed || value == "" {
			continue
		}
		nodes = append(nodes, models.Eq(field, value))
	}
	nodes = append(nodes, extra...)

	limit := policy.defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
		if limit < 0 {
			limit = policy.defaultLimit
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	return models.FindOptions{
		Where: models.And(nodes...),
		Sort:  policy.sort,
		Limit: limit,
		Page:  page,
		Depth: 1,
	}, nil
}

func listAs[T any](ctx context.Context, s *ContentService, collection string, opts models.FindOptions) ([]T, *models.Pagination, error) {
	res, err := s.store.Find(ctx, collection, opts)
	if err != nil {
		return nil, nil, storeFailure(s.logger, "list "+collection, err)
	}
	items, err := decodeDocuments[T](res.Docs)
	if err != nil {
		return nil, nil, storeFailure(s.logger, "decode "+collection, err)
	}
	pagination := res.Pagination
	return items, &pagination, nil
}

func listContent[T any](ctx context.Context, s *ContentService, collection string, q ListQuery) ([]T, *models.Pagination, error) {
	opts, err := s.Compose(collection, q)
	if err != nil {
		return nil, nil, err
	}
	return listAs[T](ctx, s, collection, opts)
}

func searchContent[T any](ctx context.Context, s *ContentService, collection, term string, q ListQuery) ([]T, *models.Pagination, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidQuery, "search query is required")
	}
	policy, ok := listingPolicies[collection]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidQuery, "unknown collection")
	}
	matchers := make([]models.Where, 0, len(policy.searchFields))
	for _, field := range policy.searchFields {
		matchers = append(matchers, models.Contains(field, term))
	}

	opts, err := s.Compose(collection, q, models.Or(matchers...))
	if err != nil {
		return nil, nil, err
	}
	return listAs[T](ctx, s, collection, opts)
}

// ListPosts returns published posts, newest first.
func (s *ContentService) ListPosts(ctx context.Context, q ListQuery) ([]models.Post, *models.Pagination, error) {
	return listContent[models.Post](ctx, s, models.CollectionPosts, q)
}

// LatestPosts returns the most recent published posts.
func (s *ContentService) LatestPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	posts, _, err := listContent[models.Post](ctx, s, models.CollectionPosts, ListQuery{Limit: &limit})
	return posts, err
}

// SearchPosts matches published posts whose title or excerpt contains term.
func (s *ContentService) SearchPosts(ctx context.Context, term string, q ListQuery) ([]models.Post, *models.Pagination, error) {
	return searchContent[models.Post](ctx, s, models.CollectionPosts, term, q)
}

// ListGalleries returns albums, most recent event first.
func (s *ContentService) ListGalleries(ctx context.Context, q ListQuery) ([]models.Gallery, *models.Pagination, error) {
	return listContent[models.Gallery](ctx, s, models.CollectionGalleries, q)
}

// ListDocuments returns documents visible to the caller.
func (s *ContentService) ListDocuments(ctx context.Context, q ListQuery) ([]models.OrgDocument, *models.Pagination, error) {
	return listContent[models.OrgDocument](ctx, s, models.CollectionDocuments, q)
}

// PostBySlug returns a published post and counts the view in the background.
func (s *ContentService) PostBySlug(ctx context.Context, slug, viewer string) (*models.Post, error) {
	post, err := bySlug[models.Post](ctx, s, models.CollectionPosts, slug)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordView(models.CollectionPosts, post.ID, viewer)
	}
	return post, nil
}

// GalleryBySlug returns one album.
func (s *ContentService) GalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error) {
	return bySlug[models.Gallery](ctx, s, models.CollectionGalleries, slug)
}

// PageBySlug returns a published page.
func (s *ContentService) PageBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return bySlug[models.Page](ctx, s, models.CollectionPages, slug)
}

func bySlug[T any](ctx context.Context, s *ContentService, collection, slug string) (*T, error) {
	one := 1
	opts, err := s.Compose(collection, ListQuery{Limit: &one}, models.Eq("slug", slug))
	if err != nil {
		return nil, err
	}
	items, _, err := listAs[T](ctx, s, collection, opts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, listingPolicies[collection].noun+" not found")
	}
	return &items[0], nil
}

// Count returns how many documents satisfy the collection's public listing without loading them.
func (s *ContentService) Count(ctx context.Context, collection string, q ListQuery) (int, error) {
	zero := 0
	q.Limit = &zero
	opts, err := s.Compose(collection, q)
	if err != nil {
		return 0, err
	}
	res, err := s.store.Find(ctx, collection, opts)
	if err != nil {
		return 0, storeFailure(s.logger, "count "+collection, err)
	}
	return res.TotalDocs, nil
}

// Stats counts active members and public content concurrently.
func (s *ContentService) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := s.store.Find(gctx, models.CollectionMembers, models.FindOptions{Where: models.Eq("isActive", true), Limit: 0})
		if err != nil {
			return storeFailure(s.logger, "count members", err)
		}
		stats.TotalMembers = res.TotalDocs
		return nil
	})
	g.Go(func() (err error) {
		stats.TotalPosts, err = s.Count(gctx, models.CollectionPosts, ListQuery{})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalGalleries, err = s.Count(gctx, models.CollectionGalleries, ListQuery{})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalDocuments, err = s.Count(gctx, models.CollectionDocuments, ListQuery{})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
