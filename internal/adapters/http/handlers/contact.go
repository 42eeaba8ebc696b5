package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/internal/adapters/http/dto"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// ContactService is the part of app.ContactService the handlers use.
type ContactService interface {
	Submit(ctx context.Context, req domain.ContactRequest) error
}

// ContactHandler serves the general contact form.
type ContactHandler struct {
	service ContactService
}

// NewContactHandler creates the handler.
func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles POST /api/v1/contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.service.Submit(c.Request.Context(), req.ToDomain()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "sent"})
}

// RegisterRoutes registers the contact route on rg.
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contact", h.Submit)
}
