package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/handler"
	"github.com/noah-isme/orgcms-api/internal/middleware"
	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/pkg/config"
	"github.com/noah-isme/orgcms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/orgcms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/orgcms-api/pkg/middleware/requestid"
)

type routeDeps struct {
	organization *handler.OrganizationHandler
	content      *handler.ContentHandler
	site         *handler.SiteHandler
	contact      *handler.ContactHandler
	activity     *handler.ActivityHandler
	metrics      *handler.MetricsHandler
	auth         middleware.TokenValidator
	observer     middleware.HTTPObserver
}

func newRouter(cfg *config.Config, d routeDeps, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.observer))

	r.GET("/health", d.metrics.Health)
	r.GET("/ready", d.metrics.Ready)
	r.GET("/metrics", d.metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	r.GET("/api-docs", handler.Catalogue(r.Routes, prefix+"/"))

	api := r.Group(prefix)
	registerPublicRoutes(api, cfg, d)
	registerAdminRoutes(api, d)
	return r
}

func registerPublicRoutes(api *gin.RouterGroup, cfg *config.Config, d routeDeps) {
	public := api.Group("/public")
	public.Use(middleware.OptionalJWT(d.auth), middleware.WithResponseMeta(), middleware.PublicCache(cfg.PublicCacheMaxAge))
	{
		public.GET("/period/active", d.organization.ActivePeriod)
		public.GET("/periods", d.organization.Periods)
		public.GET("/structure", d.organization.Structure)
		public.GET("/structure/:periodId", d.organization.Structure)
		public.GET("/members/:slug", d.organization.Member)

		public.GET("/posts", d.content.Posts)
		public.GET("/posts/latest", d.content.LatestPosts)
		public.GET("/posts/search", d.content.SearchPosts)
		public.GET("/posts/:slug", d.content.Post)
		public.GET("/galleries", d.content.Galleries)
		public.GET("/galleries/:slug", d.content.Gallery)
		public.GET("/documents", d.content.Documents)
		public.GET("/pages/:slug", d.content.Page)

		public.GET("/settings", d.site.Settings)
		public.GET("/about", d.site.About)
		public.GET("/navigation", d.site.Navigation)
		public.GET("/stats", d.site.Stats)

		public.POST("/contact", d.contact.Submit)
	}
}

func registerAdminRoutes(api *gin.RouterGroup, d routeDeps) {
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(d.auth), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/periods/:id/activate", d.organization.ActivatePeriod)
		admin.GET("/activity-logs", d.activity.List)
		admin.GET("/activity-logs/export", d.activity.Export)
		admin.GET("/contact-messages", d.contact.Messages)
	}
}
