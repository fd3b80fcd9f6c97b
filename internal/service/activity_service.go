package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
	"github.com/noah-isme/orgcms-api/pkg/export"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"

	maxExportRows = 5000
)

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ActivityService reads the append-only activity log for administrators.
type ActivityService struct {
	store     documentFinder
	renderers map[string]renderer
	now       func() time.Time
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService with CSV and PDF renderers.
func NewActivityService(store documentFinder, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		store: store,
		renderers: map[string]renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		now:    time.Now,
		logger: logger,
	}
}

func activityWhere(filter models.ActivityLogFilter) models.Where {
	var nodes []models.Where
	if filter.Action != "" {
		nodes = append(nodes, models.Eq("action", filter.Action))
	}
	if filter.Collection != "" {
		nodes = append(nodes, models.Eq("collection", filter.Collection))
	}
	if filter.UserID != "" {
		nodes = append(nodes, models.Eq("user", filter.UserID))
	}
	return models.And(nodes...)
}

// List returns activity entries, newest first, with the acting user embedded.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, *models.Pagination, error) {
	size := filter.PageSize
	if size <= 0 || size > maxListLimit {
		size = 20
	}
	res, err := s.store.Find(ctx, models.CollectionActivityLogs, models.FindOptions{
		Where: activityWhere(filter),
		Sort:  "-createdAt",
		Limit: size,
		Page:  filter.Page,
		Depth: 1,
	})
	if err != nil {
		return nil, nil, storeFailure(s.logger, "list activity logs", err)
	}
	logs, err := decodeDocuments[models.ActivityLog](res.Docs)
	if err != nil {
		return nil, nil, storeFailure(s.logger, "decode activity logs", err)
	}
	pagination := res.Pagination
	return logs, &pagination, nil
}

// Export renders the filtered activity log as CSV or PDF.
func (s *ActivityService) Export(ctx context.Context, filter models.ActivityLogFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidQuery, "unsupported export format")
	}

	res, err := s.store.Find(ctx, models.CollectionActivityLogs, models.FindOptions{
		Where: activityWhere(filter),
		Sort:  "-createdAt",
		Limit: maxExportRows,
		Depth: 1,
	})
	if err != nil {
		return nil, storeFailure(s.logger, "export activity logs", err)
	}
	logs, err := decodeDocuments[models.ActivityLog](res.Docs)
	if err != nil {
		return nil, storeFailure(s.logger, "decode activity logs", err)
	}
	if res.TotalDocs > len(logs) {
		s.logger.Warn("activity export truncated", zap.Int("total", res.TotalDocs), zap.Int("exported", len(logs)))
	}

	payload, err := r.Render(activityDataset(logs), "Activity Log")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("activity-logs-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: r.ContentType(),
		Data:        payload,
	}, nil
}

func activityDataset(logs []models.ActivityLog) export.Dataset {
	headers := []string{"timestamp", "action", "user", "collection", "document_id", "details", "ip_address"}
	rows := make([]map[string]string, 0, len(logs))
	for _, entry := range logs {
		user := entry.User.ID()
		var embedded models.User
		if ok, err := entry.User.Decode(&embedded); err == nil && ok && embedded.Email != "" {
			user = embedded.Email
		}
		var ts string
		if entry.CreatedAt != nil {
			ts = entry.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"timestamp":   ts,
			"action":      string(entry.Action),
			"user":        user,
			"collection":  entry.Collection,
			"document_id": entry.DocumentID,
			"details":     entry.Details,
			"ip_address":  entry.IPAddress,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
