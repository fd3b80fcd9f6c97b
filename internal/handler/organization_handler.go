package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/middleware"
	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

type periodService interface {
	ResolveActive(ctx context.Context) (*models.Period, error)
	Resolve(ctx context.Context, explicitID string) (string, error)
	List(ctx context.Context) ([]models.Period, error)
	Activate(ctx context.Context, id string, req service.ActivateRequest) (*models.Period, error)
}

type structureService interface {
	Assemble(ctx context.Context, periodID string) (*models.Structure, error)
	MemberBySlug(ctx context.Context, slug string) (*models.Member, error)
}

// OrganizationHandler exposes periods, the organizational chart and member profiles.
type OrganizationHandler struct {
	periods   periodService
	structure structureService
}

// NewOrganizationHandler constructs an organization handler.
func NewOrganizationHandler(periods periodService, structure structureService) *OrganizationHandler {
	return &OrganizationHandler{periods: periods, structure: structure}
}

// ActivePeriod godoc
// @Summary Get the active period
// @Tags Organization
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/period/active [get]
func (h *OrganizationHandler) ActivePeriod(c *gin.Context) {
	period, err := h.periods.ResolveActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Periods godoc
// @Summary List periods
// @Tags Organization
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/periods [get]
func (h *OrganizationHandler) Periods(c *gin.Context) {
	periods, err := h.periods.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Structure godoc
// @Summary Get the organizational structure
// @Description Positions in display order with their active members. Without a period id the active period is used.
// @Tags Organization
// @Produce json
// @Param periodId path string false "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/structure/{periodId} [get]
func (h *OrganizationHandler) Structure(c *gin.Context) {
	explicit := strings.TrimSpace(c.Param("periodId"))
	periodID, err := h.periods.Resolve(c.Request.Context(), explicit)
	if err != nil {
		response.Error(c, err)
		return
	}

	structure, err := h.structure.Assemble(c.Request.Context(), periodID)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetMeta(c, "periodId", periodID)
	if explicit == "" {
		middleware.SetMeta(c, "resolvedFrom", "active")
	} else {
		middleware.SetMeta(c, "resolvedFrom", "explicit")
	}
	response.JSON(c, http.StatusOK, structure, nil, middleware.ExtractMeta(c))
}

// Member godoc
// @Summary Get a member profile
// @Tags Organization
// @Produce json
// @Param slug path string true "Member slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/members/{slug} [get]
func (h *OrganizationHandler) Member(c *gin.Context) {
	member, err := h.structure.MemberBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// ActivatePeriod godoc
// @Summary Make a period the only active one
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/periods/{id}/activate [post]
func (h *OrganizationHandler) ActivatePeriod(c *gin.Context) {
	req := service.ActivateRequest{IPAddress: c.ClientIP()}
	if claims := claimsFromContext(c); claims != nil {
		req.ActorID = claims.UserID
	}
	period, err := h.periods.Activate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
