package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
)

type globalStore interface {
	FindGlobal(ctx context.Context, slug string, depth int) (models.Document, error)
}

// SiteService exposes the singleton site globals.
type SiteService struct {
	store  globalStore
	logger *zap.Logger
}

// NewSiteService constructs a SiteService.
func NewSiteService(store globalStore, logger *zap.Logger) *SiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{store: store, logger: logger}
}

func loadGlobal[T any](ctx context.Context, s *SiteService, slug string) (*T, error) {
	doc, err := s.store.FindGlobal(ctx, slug, 2)
	if err != nil {
		return nil, storeFailure(s.logger, "find global "+slug, err)
	}
	var out T
	if err := decodeDocument(doc, &out); err != nil {
		return nil, storeFailure(s.logger, "decode global "+slug, err)
	}
	return &out, nil
}

// Settings returns site identity and contact details.
func (s *SiteService) Settings(ctx context.Context) (*models.SiteSettings, error) {
	return loadGlobal[models.SiteSettings](ctx, s, models.GlobalSettings)
}

// About returns the organization profile.
func (s *SiteService) About(ctx context.Context) (*models.About, error) {
	return loadGlobal[models.About](ctx, s, models.GlobalAbout)
}

// Navigation returns the site menus.
func (s *SiteService) Navigation(ctx context.Context) (*models.Navigation, error) {
	return loadGlobal[models.Navigation](ctx, s, models.GlobalNavigation)
}
