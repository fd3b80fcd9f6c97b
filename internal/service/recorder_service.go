package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/pkg/jobs"
)

const (
	jobTypeView     = "record_view"
	jobTypeActivity = "record_activity"
)

type recorderStore interface {
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	Create(ctx context.Context, collection string, data models.Document) (models.Document, error)
}

type viewGuard interface {
	FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error)
}

type sideEffectMetrics interface {
	RecordSideEffect(kind, outcome string)
}

type viewTask struct {
	Collection string
	ID         string
	Viewer     string
}

// RecorderConfig tunes the background side-effect pool.
type RecorderConfig struct {
	Workers     int
	BufferSize  int
	DedupWindow time.Duration
}

// RecorderService counts content views and appends activity log entries off the request path.
// Every failure is logged and dropped; nothing is retried.
type RecorderService struct {
	store       recorderStore
	guard       viewGuard
	metrics     sideEffectMetrics
	dedupWindow time.Duration
	queue       *jobs.Queue
	logger      *zap.Logger
}

// NewRecorderService builds the recorder and its worker pool. guard and metrics may be nil.
func NewRecorderService(store recorderStore, guard viewGuard, metrics sideEffectMetrics, cfg RecorderConfig, logger *zap.Logger) *RecorderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &RecorderService{
		store:       store,
		guard:       guard,
		metrics:     metrics,
		dedupWindow: cfg.DedupWindow,
		logger:      logger,
	}
	r.queue = jobs.NewQueue("side-effects", r.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return r
}

// Start launches the workers. Tasks run on a context detached from ctx's cancellation.
func (r *RecorderService) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop waits for already dispatched tasks to finish.
func (r *RecorderService) Stop() {
	r.queue.Stop()
}

// RecordView schedules a view count for a document. It never blocks the caller.
func (r *RecorderService) RecordView(collection, id, viewer string) {
	r.dispatch(jobs.Job{ID: collection + ":" + id, Type: jobTypeView, Payload: viewTask{Collection: collection, ID: id, Viewer: viewer}})
}

// RecordActivity schedules an append to the activity log. It never blocks the caller.
func (r *RecorderService) RecordActivity(entry models.ActivityLog) {
	r.dispatch(jobs.Job{ID: entry.Collection + ":" + entry.DocumentID, Type: jobTypeActivity, Payload: entry})
}

func (r *RecorderService) dispatch(job jobs.Job) {
	if err := r.queue.TryEnqueue(job); err != nil {
		r.logger.Warn("side effect dropped", zap.String("type", job.Type), zap.String("job_id", job.ID), zap.Error(err))
		r.observe(job.Type, "dropped")
	}
}

func (r *RecorderService) handle(ctx context.Context, job jobs.Job) error {
	var err error
	switch payload := job.Payload.(type) {
	case viewTask:
		err = r.ApplyView(ctx, payload.Collection, payload.ID, payload.Viewer)
	case models.ActivityLog:
		err = r.AppendActivity(ctx, payload)
	default:
		err = fmt.Errorf("unexpected payload %T", job.Payload)
	}

	if err != nil {
		r.logger.Warn("side effect failed", zap.String("type", job.Type), zap.String("job_id", job.ID), zap.Error(err))
		r.observe(job.Type, "failed")
	}
	return nil
}

// ApplyView increments the views counter unless the same viewer was already counted within the window.
// A guard outage counts the view rather than losing it.
func (r *RecorderService) ApplyView(ctx context.Context, collection, id, viewer string) error {
	if r.guard != nil && viewer != "" {
		key := fmt.Sprintf("orgcms:view:%s:%s:%s", collection, id, viewer)
		first, err := r.guard.FirstSeen(ctx, key, r.dedupWindow)
		if err != nil {
			r.logger.Warn("view guard unavailable", zap.String("key", key), zap.Error(err))
		} else if !first {
			r.observe(jobTypeView, "deduplicated")
			return nil
		}
	}

	if _, err := r.store.Increment(ctx, collection, id, "views", 1); err != nil {
		return fmt.Errorf("increment views %s/%s: %w", collection, id, err)
	}
	r.observe(jobTypeView, "applied")
	return nil
}

// AppendActivity writes one activity log entry.
func (r *RecorderService) AppendActivity(ctx context.Context, entry models.ActivityLog) error {
	doc := models.Document{
		"action":     entry.Action,
		"collection": entry.Collection,
		"documentId": entry.DocumentID,
		"details":    entry.Details,
		"ipAddress":  entry.IPAddress,
	}
	if !entry.User.IsZero() {
		doc["user"] = entry.User.ID()
	}
	if _, err := r.store.Create(ctx, models.CollectionActivityLogs, doc); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	r.observe(jobTypeActivity, "applied")
	return nil
}

func (r *RecorderService) observe(kind, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordSideEffect(kind, outcome)
	}
}
