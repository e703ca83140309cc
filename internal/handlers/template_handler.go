package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/services"
)

type TemplateHandler struct {
	templateService *services.TemplateService
}

func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// ListVoucherTemplates handles GET /api/v1/templates.
func (h *TemplateHandler) ListVoucherTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.templateService.ListVoucherTemplates()})
}

// ListInviteTemplates handles GET /api/v1/templates/invites.
func (h *TemplateHandler) ListInviteTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.templateService.ListInviteTemplates()})
}
