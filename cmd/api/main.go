package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/orgcms-api/api/swagger"
	"github.com/noah-isme/orgcms-api/internal/handler"
	"github.com/noah-isme/orgcms-api/internal/repository"
	"github.com/noah-isme/orgcms-api/internal/service"
	"github.com/noah-isme/orgcms-api/pkg/cache"
	"github.com/noah-isme/orgcms-api/pkg/config"
	"github.com/noah-isme/orgcms-api/pkg/database"
	"github.com/noah-isme/orgcms-api/pkg/logger"
)

// @title Organization CMS API
// @version 1.0.0
// @description Public read API for an organization website plus a small admin surface
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := run(); err != nil {
		log.Fatalf("orgcms-api: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}
	store, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	guard := repository.NewGuardRepository(redisClient, logr)
	defer guard.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	deps, recorder := wire(cfg, store, guard, metrics, checks, logr)
	recorder.Start(ctx)
	defer recorder.Stop()

	r := newRouter(cfg, deps, logr)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logr.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

// openStore selects the record store driver. The postgres driver migrates its schema on start.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handler.ReadinessCheck) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return repository.NewMemoryStore(), func() {}, nil
	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := repository.NewDocumentStore(db, cfg.Store.Timeout)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate store: %w", err)
		}
		checks["store"] = db.PingContext
		return store, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// wire builds services and handlers over one store. The recorder is returned unstarted.
func wire(cfg *config.Config, store repository.Store, guard *repository.GuardRepository, metrics *service.MetricsService, checks map[string]handler.ReadinessCheck, logr *zap.Logger) (routeDeps, *service.RecorderService) {
	recorder := service.NewRecorderService(store, guard, metrics, service.RecorderConfig{
		Workers:     cfg.SideEffects.Workers,
		BufferSize:  cfg.SideEffects.BufferSize,
		DedupWindow: cfg.SideEffects.ViewDedupWindow,
	}, logr.Named("recorder"))

	periods := service.NewPeriodService(store, recorder, logr.Named("period"))
	structure := service.NewStructureService(store, logr.Named("structure"))
	content := service.NewContentService(store, recorder, logr.Named("content"))
	site := service.NewSiteService(store, logr.Named("site"))
	contact := service.NewContactService(store, guard, metrics, validator.New(), service.ContactConfig{
		RateLimit:  cfg.Contact.RateLimit,
		RateWindow: cfg.Contact.RateWindow,
	}, logr.Named("contact"))
	activity := service.NewActivityService(store, logr.Named("activity"))
	auth := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	return routeDeps{
		organization: handler.NewOrganizationHandler(periods, structure),
		content:      handler.NewContentHandler(content),
		site:         handler.NewSiteHandler(site, content),
		contact:      handler.NewContactHandler(contact),
		activity:     handler.NewActivityHandler(activity),
		metrics:      handler.NewMetricsHandler(metrics, checks),
		auth:         auth,
		observer:     metrics,
	}, recorder
}
