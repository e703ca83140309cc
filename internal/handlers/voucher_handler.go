package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/services"
	"github.com/mssaude/voucher-service/pkg/sanitize"
)

type VoucherHandler struct {
	voucherService *services.VoucherService
	cfg            *config.Config
}

func NewVoucherHandler(voucherService *services.VoucherService, cfg *config.Config) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService, cfg: cfg}
}

// Generate handles POST /api/v1/vouchers: CSV upload in, JSON descriptor of
// the persisted PDF out.
func (h *VoucherHandler) Generate(c *gin.Context) {
	uploadPath, originalName, err := saveUpload(c, h.cfg.UploadsDir)
	if err != nil {
		respondError(c, err)
		return
	}

	template := c.PostForm("template")
	promoterID := strings.TrimSpace(c.PostForm("promotorId"))

	generated, err := h.voucherService.Generate(uploadPath, originalName, template, promoterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filename":      generated.Filename,
		"template":      generated.Template,
		"size_bytes":    generated.SizeBytes,
		"voucher_count": generated.VoucherCount,
		"created_at":    generated.CreatedAt,
		"download_url":  "/api/v1/downloads/" + url.PathEscape(generated.Filename),
	})
}

// saveUpload stores the multipart csvFile in the uploads directory under a
// timestamped sanitized name and returns its path plus the original name.
func saveUpload(c *gin.Context, uploadsDir string) (string, string, error) {
	file, header, err := c.Request.FormFile("csvFile")
	if err != nil {
		return "", "", &services.InputError{Msg: "no CSV file uploaded"}
	}
	defer file.Close()

	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", "", err
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitize.Filename(header.Filename))
	path := filepath.Join(uploadsDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(path)
		return "", "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", "", err
	}
	return path, header.Filename, nil
}
