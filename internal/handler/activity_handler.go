package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

type activityService interface {
	List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, *models.Pagination, error)
	Export(ctx context.Context, filter models.ActivityLogFilter, format string) (*service.ExportFile, error)
}

// ActivityHandler exposes the activity log to administrators.
type ActivityHandler struct {
	activity activityService
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(activity activityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary List activity log entries
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param action query string false "Action"
// @Param collection query string false "Collection"
// @Param user query string false "User ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/activity-logs [get]
func (h *ActivityHandler) List(c *gin.Context) {
	logs, pagination, err := h.activity.List(c.Request.Context(), activityFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// Export godoc
// @Summary Export activity log entries
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/activity-logs/export [get]
func (h *ActivityHandler) Export(c *gin.Context) {
	file, err := h.activity.Export(c.Request.Context(), activityFilter(c), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
