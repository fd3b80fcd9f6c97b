package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
)

type activityServiceMock struct {
	lastFilter models.ActivityLogFilter
	lastFormat string
	file       *service.ExportFile
	err        error
}

func (m *activityServiceMock) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.ActivityLog{{ID: "a1", Action: models.ActionUpdate}}, &models.Pagination{Page: 1, Limit: 20, TotalDocs: 1, TotalPages: 1}, m.err
}

func (m *activityServiceMock) Export(ctx context.Context, filter models.ActivityLogFilter, format string) (*service.ExportFile, error) {
	m.lastFilter = filter
	m.lastFormat = format
	return m.file, m.err
}

func TestActivityListFilters(t *testing.T) {
	svc := &activityServiceMock{}
	h := NewActivityHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/admin/activity-logs?action=update&collection=periods&user=u1&page=2&limit=10")

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ActivityLogFilter{Action: "update", Collection: "periods", UserID: "u1", Page: 2, PageSize: 10}, svc.lastFilter)
}

func TestActivityExportStreamsFile(t *testing.T) {
	svc := &activityServiceMock{file: &service.ExportFile{Filename: "activity-logs-20240506-070809.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("timestamp,action\n")}}
	h := NewActivityHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/admin/activity-logs/export")

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, svc.lastFormat)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=activity-logs-20240506-070809.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "timestamp,action\n", w.Body.String())
}

func TestActivityExportUnsupportedFormat(t *testing.T) {
	svc := &activityServiceMock{err: appErrors.Clone(appErrors.ErrInvalidQuery, "unsupported export format")}
	h := NewActivityHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/admin/activity-logs/export?format=xlsx")

	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "xlsx", svc.lastFormat)
}
