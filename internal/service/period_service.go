package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

type periodStore interface {
	documentFinder
	FindByID(ctx context.Context, collection, id string, depth int) (models.Document, error)
	ActivateExclusive(ctx context.Context, collection, id, field string) error
}

type activityRecorder interface {
	RecordActivity(entry models.ActivityLog)
}

// ActivateRequest identifies who switched the current period.
type ActivateRequest struct {
	ActorID   string
	IPAddress string
}

// PeriodService decides which organizational period is current.
type PeriodService struct {
	store    periodStore
	recorder activityRecorder
	logger   *zap.Logger
}

// NewPeriodService creates the period selector.
func NewPeriodService(store periodStore, recorder activityRecorder, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{store: store, recorder: recorder, logger: logger}
}

// ResolveActive returns the first active period in retrieval order.
func (s *PeriodService) ResolveActive(ctx context.Context) (*models.Period, error) {
	res, err := s.store.Find(ctx, models.CollectionPeriods, models.FindOptions{
		Where: models.Eq("isActive", true),
		Limit: 1,
	})
	if err != nil {
		return nil, storeFailure(s.logger, "resolve active period", err)
	}
	if len(res.Docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active period")
	}
	if res.TotalDocs > 1 {
		s.logger.Warn("multiple active periods", zap.Int("count", res.TotalDocs), zap.String("chosen", res.Docs[0].ID()))
	}

	var period models.Period
	if err := decodeDocument(res.Docs[0], &period); err != nil {
		return nil, storeFailure(s.logger, "decode active period", err)
	}
	return &period, nil
}

// Resolve returns the explicit identifier untouched, or the active period's identifier when none is given.
// An explicit identifier is not checked for existence.
func (s *PeriodService) Resolve(ctx context.Context, explicitID string) (string, error) {
	if id := strings.TrimSpace(explicitID); id != "" {
		return id, nil
	}
	period, err := s.ResolveActive(ctx)
	if err != nil {
		return "", err
	}
	return period.ID, nil
}

// List returns every period, newest first.
func (s *PeriodService) List(ctx context.Context) ([]models.Period, error) {
	res, err := s.store.Find(ctx, models.CollectionPeriods, models.FindOptions{Sort: "-startDate", Limit: models.NoLimit})
	if err != nil {
		return nil, storeFailure(s.logger, "list periods", err)
	}
	periods, err := decodeDocuments[models.Period](res.Docs)
	if err != nil {
		return nil, storeFailure(s.logger, "decode periods", err)
	}
	return periods, nil
}

// Get loads a period by id.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.Period, error) {
	doc, err := s.store.FindByID(ctx, models.CollectionPeriods, id, 0)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, storeFailure(s.logger, "get period", err)
	}
	var period models.Period
	if err := decodeDocument(doc, &period); err != nil {
		return nil, storeFailure(s.logger, "decode period", err)
	}
	return &period, nil
}

// Activate makes id the only active period and records the change.
func (s *PeriodService) Activate(ctx context.Context, id string, req ActivateRequest) (*models.Period, error) {
	if err := s.store.ActivateExclusive(ctx, models.CollectionPeriods, id, "isActive"); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, storeFailure(s.logger, "activate period", err)
	}

	period, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		entry := models.ActivityLog{
			Action:     models.ActionUpdate,
			Collection: models.CollectionPeriods,
			DocumentID: id,
			Details:    fmt.Sprintf("activated period %s", period.Name),
			IPAddress:  req.IPAddress,
		}
		if req.ActorID != "" {
			entry.User = models.Ref(req.ActorID)
		}
		s.recorder.RecordActivity(entry)
	}
	s.logger.Info("period activated", zap.String("period_id", id), zap.String("actor", req.ActorID))
	return period, nil
}
