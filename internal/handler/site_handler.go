package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

type siteService interface {
	Settings(ctx context.Context) (*models.SiteSettings, error)
	About(ctx context.Context) (*models.About, error)
	Navigation(ctx context.Context) (*models.Navigation, error)
}

type statsService interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// SiteHandler exposes site-wide globals and headline numbers.
type SiteHandler struct {
	site  siteService
	stats statsService
}

// NewSiteHandler constructs a site handler.
func NewSiteHandler(site siteService, stats statsService) *SiteHandler {
	return &SiteHandler{site: site, stats: stats}
}

// Settings godoc
// @Summary Site settings
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/settings [get]
func (h *SiteHandler) Settings(c *gin.Context) {
	settings, err := h.site.Settings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// About godoc
// @Summary About the organization
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/about [get]
func (h *SiteHandler) About(c *gin.Context) {
	about, err := h.site.About(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, about, nil)
}

// Navigation godoc
// @Summary Site navigation
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/navigation [get]
func (h *SiteHandler) Navigation(c *gin.Context) {
	nav, err := h.site.Navigation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nav, nil)
}

// Stats godoc
// @Summary Headline counts
// @Description Active members plus public posts, galleries and documents.
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/stats [get]
func (h *SiteHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Endpoint is one entry of the API catalogue.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Catalogue lists the routes registered under prefix. It reads the router lazily so it sees every route.
func Catalogue(routes func() gin.RoutesInfo, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoints := make([]Endpoint, 0)
		for _, route := range routes() {
			if !strings.HasPrefix(route.Path, prefix) {
				continue
			}
			endpoints = append(endpoints, Endpoint{Method: route.Method, Path: route.Path})
		}
		sort.Slice(endpoints, func(i, j int) bool {
			if endpoints[i].Path == endpoints[j].Path {
				return endpoints[i].Method < endpoints[j].Method
			}
			return endpoints[i].Path < endpoints[j].Path
		})
		response.JSON(c, http.StatusOK, endpoints, nil, map[string]interface{}{"total": len(endpoints)})
	}
}
