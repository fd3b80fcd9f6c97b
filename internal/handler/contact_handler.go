package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/orgcms-api/internal/models"
	appErrors "github.com/noah-isme/orgcms-api/pkg/errors"
	"github.com/noah-isme/orgcms-api/pkg/response"
)

type contactService interface {
	Submit(ctx context.Context, sub models.ContactSubmission, clientIP string) (*models.ContactMessage, error)
	List(ctx context.Context, page, size int) ([]models.ContactMessage, *models.Pagination, error)
}

// ContactHandler accepts public contact submissions and lists them for administrators.
type ContactHandler struct {
	contact contactService
}

// NewContactHandler constructs a contact handler.
func NewContactHandler(contact contactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit godoc
// @Summary Send a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body models.ContactSubmission true "Contact form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /public/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var sub models.ContactSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	msg, err := h.contact.Submit(c.Request.Context(), sub, c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Messages godoc
// @Summary List contact messages
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/contact-messages [get]
func (h *ContactHandler) Messages(c *gin.Context) {
	messages, pagination, err := h.contact.List(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, pagination)
}
