package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

func intPtr(v int) *int { return &v }

func seedPosts(store *faultyStore) {
	store.mustCreate(models.CollectionPosts,
		models.Document{"id": "p1", "slug": "budget-2024", "title": "Budget 2024 approved", "category": "news", "status": "published", "publishedDate": "2024-03-01T00:00:00Z", "views": 5},
		models.Document{"id": "p2", "slug": "camp", "title": "Camp", "excerpt": "A small BUDGET was used", "category": "activity", "status": "published", "publishedDate": "2024-04-01T00:00:00Z", "tags": []interface{}{map[string]interface{}{"tag": "outdoor"}}},
		models.Document{"id": "p3", "slug": "draft-budget", "title": "Draft budget", "category": "news", "status": "draft", "publishedDate": "2024-05-01T00:00:00Z"},
		models.Document{"id": "p4", "slug": "old", "title": "Archived", "category": "news", "status": "archived"},
	)
}

func postIDs(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestContentServiceComposeAlwaysAndsVisibility(t *testing.T) {
	svc := NewContentService(newFaultyStore(), nil, nil)

	opts, err := svc.Compose(models.CollectionPosts, ListQuery{Category: "news", Tag: "outdoor", Type: "ignored"})
	require.NoError(t, err)
	require.Len(t, opts.Where.And, 3)
	assert.Equal(t, models.Eq("status", models.StatusPublished), opts.Where.And[0])
	assert.Equal(t, models.Eq("category", "news"), opts.Where.And[1])
	assert.Equal(t, models.Eq("tags.tag", "outdoor"), opts.Where.And[2])
	assert.Equal(t, "-publishedDate", opts.Sort)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 1, opts.Page)

	gallery, err := svc.Compose(models.CollectionGalleries, ListQuery{Type: "photo"})
	require.NoError(t, err)
	assert.Equal(t, models.Eq("type", "photo"), gallery.Where)
	assert.Equal(t, 12, gallery.Limit)

	capped, err := svc.Compose(models.CollectionDocuments, ListQuery{Limit: intPtr(1000)})
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Limit)

	_, err = svc.Compose("users", ListQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidQuery))
}

func TestContentServiceListPostsPublishedOnly(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	svc := NewContentService(store, nil, nil)

	posts, pagination, err := svc.ListPosts(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, postIDs(posts))
	assert.Equal(t, 2, pagination.TotalDocs)

	news, _, err := svc.ListPosts(context.Background(), ListQuery{Category: "news"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, postIDs(news), "a caller filter never widens visibility")

	tagged, _, err := svc.ListPosts(context.Background(), ListQuery{Tag: "outdoor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, postIDs(tagged))
}

func TestContentServiceCountOnlyMode(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	svc := NewContentService(store, nil, nil)

	posts, pagination, err := svc.ListPosts(context.Background(), ListQuery{Limit: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 2, pagination.TotalDocs)
	assert.Equal(t, 1, pagination.TotalPages)

	count, err := svc.Count(context.Background(), models.CollectionPosts, ListQuery{Category: "news"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, store.lastFind().Limit)
}

func TestContentServicePagination(t *testing.T) {
	store := newFaultyStore()
	for i := 0; i < 25; i++ {
		store.mustCreate(models.CollectionGalleries, models.Document{"slug": fmt.Sprintf("g-%02d", i), "eventDate": fmt.Sprintf("2024-01-%02dT00:00:00Z", i+1)})
	}
	svc := NewContentService(store, nil, nil)

	galleries, pagination, err := svc.ListGalleries(context.Background(), ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, galleries, 12)
	assert.Equal(t, "g-12", galleries[0].Slug)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.True(t, pagination.HasNextPage)
	assert.True(t, pagination.HasPrevPage)

	latest, err := svc.LatestPosts(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.Equal(t, 5, store.lastFind().Limit)
}

func TestContentServiceHugePageReturnsEmptyPage(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	svc := NewContentService(store, nil, nil)

	var (
		posts      []models.Post
		pagination *models.Pagination
		err        error
	)
	require.NotPanics(t, func() {
		posts, pagination, err = svc.ListPosts(context.Background(), ListQuery{Page: math.MaxInt})
	})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 2, pagination.TotalDocs)
	assert.Equal(t, 1, pagination.TotalPages)
	assert.False(t, pagination.HasNextPage)
	assert.True(t, pagination.HasPrevPage)
}

func TestContentServiceSearch(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	svc := NewContentService(store, nil, nil)

	for _, term := range []string{"", "   "} {
		_, _, err := svc.SearchPosts(context.Background(), term, ListQuery{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidQuery))
	}
	assert.Equal(t, 0, store.findCount())

	posts, pagination, err := svc.SearchPosts(context.Background(), "budget", ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, postIDs(posts), "results follow date order, drafts excluded")
	assert.Equal(t, 2, pagination.TotalDocs)
}

func TestContentServiceDocumentsVisibility(t *testing.T) {
	store := newFaultyStore()
	store.mustCreate(models.CollectionDocuments,
		models.Document{"id": "d1", "title": "Public SK", "category": "sk", "isPublic": true},
		models.Document{"id": "d2", "title": "Internal report", "category": "report", "isPublic": false},
		models.Document{"id": "d3", "title": "Legacy"},
	)
	svc := NewContentService(store, nil, nil)

	public, _, err := svc.ListDocuments(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "d1", public[0].ID)

	all, _, err := svc.ListDocuments(context.Background(), ListQuery{Privileged: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	reports, _, err := svc.ListDocuments(context.Background(), ListQuery{Privileged: true, Category: "report"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "d2", reports[0].ID)
}

func TestContentServicePostBySlugRecordsView(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	recorder := &mockRecorder{}
	svc := NewContentService(store, recorder, nil)

	post, err := svc.PostBySlug(context.Background(), "budget-2024", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), post.Views)
	assert.Equal(t, []string{"posts/p1@10.0.0.1"}, recorder.views)

	_, err = svc.PostBySlug(context.Background(), "draft-budget", "10.0.0.1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Len(t, recorder.views, 1)
}

func TestContentServiceGalleryAndPageBySlug(t *testing.T) {
	store := newFaultyStore()
	store.mustCreate(models.CollectionGalleries, models.Document{"slug": "expo", "title": "Expo", "type": "photo"})
	store.mustCreate(models.CollectionPages,
		models.Document{"slug": "about-us", "title": "About", "status": "published"},
		models.Document{"slug": "wip", "title": "WIP", "status": "draft"},
	)
	svc := NewContentService(store, nil, nil)

	gallery, err := svc.GalleryBySlug(context.Background(), "expo")
	require.NoError(t, err)
	assert.Equal(t, models.GalleryPhoto, gallery.Type)

	page, err := svc.PageBySlug(context.Background(), "about-us")
	require.NoError(t, err)
	assert.Equal(t, "About", page.Title)

	_, err = svc.PageBySlug(context.Background(), "wip")
	require.Error(t, err)
	assert.Equal(t, "page not found", appErrors.FromError(err).Message)
}

func TestContentServiceStats(t *testing.T) {
	store := newFaultyStore()
	seedPosts(store)
	store.mustCreate(models.CollectionMembers,
		models.Document{"name": "A", "isActive": true},
		models.Document{"name": "B", "isActive": false},
		models.Document{"name": "C", "isActive": true},
	)
	store.mustCreate(models.CollectionGalleries, models.Document{"slug": "g1"}, models.Document{"slug": "g2"})
	store.mustCreate(models.CollectionDocuments, models.Document{"isPublic": true}, models.Document{"isPublic": false})
	svc := NewContentService(store, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalMembers: 2, TotalPosts: 2, TotalGalleries: 2, TotalDocuments: 1}, *stats)
	for _, opts := range store.finds {
		assert.Equal(t, 0, opts.Limit)
	}

	store.findErr = errors.New("down")
	_, err = svc.Stats(context.Background())
	assert.Equal(t, appErrors.ErrStore.Code, appErrors.FromError(err).Code)
}
