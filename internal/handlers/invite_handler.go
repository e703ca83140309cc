package handlers

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/services"
)

type InviteHandler struct {
	inviteService *services.InviteService
	cfg           *config.Config
}

func NewInviteHandler(inviteService *services.InviteService, cfg *config.Config) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, cfg: cfg}
}

// Generate handles POST /api/v1/invites: CSV upload in, ZIP of per-invite
// PDFs streamed out. The archive is only started once every invite has been
// composed, so an error never leaves the client with a truncated ZIP.
func (h *InviteHandler) Generate(c *gin.Context) {
	uploadPath, originalName, err := saveUpload(c, h.cfg.UploadsDir)
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			log.Printf("WARN: failed to remove uploaded CSV %s: %v", uploadPath, err)
		}
	}()

	pdfDir, count, cleanup, err := h.inviteService.Compose(uploadPath, c.PostForm("template"))
	defer cleanup()
	if err != nil {
		respondError(c, err)
		return
	}

	zipName := services.InviteArchiveName(originalName)
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", zipName))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

	if err := h.inviteService.WriteArchive(c.Writer, pdfDir); err != nil {
		// headers are gone; all we can do is log and drop the connection
		log.Printf("ERROR: streaming invite archive %s (%d invites): %v", zipName, count, err)
		c.Abort()
		return
	}
	log.Printf("Sent invite archive %s (%d invites)", zipName, count)
}
