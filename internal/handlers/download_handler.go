package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/models"
	"github.com/mssaude/voucher-service/pkg/sanitize"
	"gorm.io/gorm"
)

type DownloadHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewDownloadHandler(db *gorm.DB, cfg *config.Config) *DownloadHandler {
	return &DownloadHandler{db: db, cfg: cfg}
}

// List handles GET /api/v1/downloads: the registry-backed catalog of
// artifacts still available for download.
func (h *DownloadHandler) List(c *gin.Context) {
	var files []models.GeneratedFile
	if err := h.db.Order("created_at DESC").Find(&files).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// Status handles GET /api/v1/downloads/:filename/status: a cheap existence
// probe clients use before starting a download.
func (h *DownloadHandler) Status(c *gin.Context) {
	path := h.artifactPath(c.Param("filename"))
	info, err := os.Stat(path)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":   true,
		"size":     info.Size(),
		"modified": info.ModTime(),
	})
}

// Get handles GET /api/v1/downloads/:filename: streams the artifact as an
// attachment. http.ServeFile supplies Range support for download managers.
func (h *DownloadHandler) Get(c *gin.Context) {
	filename := sanitize.Filename(c.Param("filename"))
	path := filepath.Join(h.cfg.DownloadsDir, filename)

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "file not found",
			"message": "the requested file does not exist or has been removed",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeFile(c.Writer, c.Request, path)
}

func (h *DownloadHandler) artifactPath(filename string) string {
	return filepath.Join(h.cfg.DownloadsDir, sanitize.Filename(filename))
}
