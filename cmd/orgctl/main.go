package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/repository"
	"github.com/noah-isme/orgcms-api/pkg/config"
	"github.com/noah-isme/orgcms-api/pkg/database"
	"github.com/noah-isme/orgcms-api/pkg/logger"
)

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// storeOpener returns the store to operate on and a function releasing it.
type storeOpener func(ctx context.Context) (*environment, error)

type environment struct {
	store   repository.Store
	migrate func(ctx context.Context) error
	logger  *zap.Logger
	close   func()
}

func openFromConfig(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Store.Driver == config.StoreDriverMemory {
		return nil, fmt.Errorf("orgctl needs a persistent store, STORE_DRIVER is %q", cfg.Store.Driver)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := repository.NewDocumentStore(db, cfg.Store.Timeout)
	return &environment{
		store:   store,
		migrate: store.Migrate,
		logger:  logr,
		close: func() {
			_ = db.Close()
			_ = logr.Sync()
		},
	}, nil
}
