package services

import (
	"log"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mssaude/voucher-service/internal/config"
)

// PreviewService renders first-page PNG thumbnails of template PDFs via the
// external ImageMagick CLI. Thumbnails are cosmetic; every failure is
// logged and swallowed.
type PreviewService struct {
	cfg *config.Config

	once     sync.Once
	magickOK bool
}

func NewPreviewService(cfg *config.Config) *PreviewService { return &PreviewService{cfg: cfg} }

func (s *PreviewService) magickAvailable() bool {
	s.once.Do(func() {
		_, err := exec.LookPath("magick")
		s.magickOK = err == nil
		if !s.magickOK {
			log.Println("WARN: magick not found in PATH; template previews disabled")
		}
	})
	return s.magickOK
}

// EnsurePreview returns the public URL path of the thumbnail for the named
// template, rendering it on first use. Returns "" when no preview can be
// produced. The etiqueta mode has no template file; its preview is a
// pre-made static image.
func (s *PreviewService) EnsurePreview(templatePath, name string) string {
	previewName := strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	previewPath := filepath.Join(s.cfg.PreviewsDir, previewName)
	previewURL := "/previews/" + url.PathEscape(previewName)

	if _, err := os.Stat(previewPath); err == nil {
		return previewURL
	}

	if name == EtiquetaTemplate {
		log.Printf("WARN: preview image %s not found; add one to %s", previewName, s.cfg.PreviewsDir)
		return previewURL
	}

	if templatePath == "" {
		return ""
	}
	if _, err := os.Stat(templatePath); err != nil {
		log.Printf("WARN: template %s not found, cannot render preview", templatePath)
		return ""
	}
	if !s.magickAvailable() {
		return ""
	}
	if err := os.MkdirAll(s.cfg.PreviewsDir, 0o755); err != nil {
		log.Printf("WARN: creating previews dir: %v", err)
		return ""
	}

	cmd := exec.Command("magick", "-density", "150", templatePath+"[0]", "-quality", "90", previewPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("WARN: rendering preview for %s: %v (%s)", name, err, strings.TrimSpace(string(out)))
		return ""
	}
	log.Printf("Rendered preview for %s", name)
	return previewURL
}
