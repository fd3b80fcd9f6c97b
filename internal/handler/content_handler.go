package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

type contentService interface {
	ListPosts(ctx context.Context, q service.ListQuery) ([]models.Post, *models.Pagination, error)
	LatestPosts(ctx context.Context, limit int) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string, q service.ListQuery) ([]models.Post, *models.Pagination, error)
	PostBySlug(ctx context.Context, slug, viewer string) (*models.Post, error)
	ListGalleries(ctx context.Context, q service.ListQuery) ([]models.Gallery, *models.Pagination, error)
	GalleryBySlug(ctx context.Context, slug string) (*models.Gallery, error)
	ListDocuments(ctx context.Context, q service.ListQuery) ([]models.OrgDocument, *models.Pagination, error)
	PageBySlug(ctx context.Context, slug string) (*models.Page, error)
}

// ContentHandler exposes the public posts, galleries, documents and pages.
type ContentHandler struct {
	content contentService
}

// NewContentHandler constructs a content handler.
func NewContentHandler(content contentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// Posts godoc
// @Summary List published posts
// @Tags Content
// @Produce json
// @Param category query string false "Post category"
// @Param tag query string false "Tag"
// @Param page query int false "Page"
// @Param limit query int false "Page size, 0 returns only the total"
// @Success 200 {object} response.Envelope
// @Router /public/posts [get]
func (h *ContentHandler) Posts(c *gin.Context) {
	posts, pagination, err := h.content.ListPosts(c.Request.Context(), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}

// LatestPosts godoc
// @Summary Latest published posts
// @Tags Content
// @Produce json
// @Param limit query int false "Number of posts"
// @Success 200 {object} response.Envelope
// @Router /public/posts/latest [get]
func (h *ContentHandler) LatestPosts(c *gin.Context) {
	posts, err := h.content.LatestPosts(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// SearchPosts godoc
// @Summary Search published posts
// @Tags Content
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/posts/search [get]
func (h *ContentHandler) SearchPosts(c *gin.Context) {
	posts, pagination, err := h.content.SearchPosts(c.Request.Context(), c.Query("q"), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination, map[string]interface{}{"query": c.Query("q")})
}

// Post godoc
// @Summary Get a published post
// @Tags Content
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/posts/{slug} [get]
func (h *ContentHandler) Post(c *gin.Context) {
	post, err := h.content.PostBySlug(c.Request.Context(), c.Param("slug"), c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Galleries godoc
// @Summary List galleries
// @Tags Content
// @Produce json
// @Param type query string false "photo or video"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/galleries [get]
func (h *ContentHandler) Galleries(c *gin.Context) {
	galleries, pagination, err := h.content.ListGalleries(c.Request.Context(), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, galleries, pagination)
}

// Gallery godoc
// @Summary Get a gallery
// @Tags Content
// @Produce json
// @Param slug path string true "Gallery slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/galleries/{slug} [get]
func (h *ContentHandler) Gallery(c *gin.Context) {
	gallery, err := h.content.GalleryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gallery, nil)
}

// Documents godoc
// @Summary List documents
// @Description Anonymous callers only see public documents.
// @Tags Content
// @Produce json
// @Param category query string false "Document category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /public/documents [get]
func (h *ContentHandler) Documents(c *gin.Context) {
	q := listQuery(c)
	q.Privileged = claimsFromContext(c) != nil
	docs, pagination, err := h.content.ListDocuments(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Page godoc
// @Summary Get a published page
// @Tags Content
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/pages/{slug} [get]
func (h *ContentHandler) Page(c *gin.Context) {
	page, err := h.content.PageBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}
