package services

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mssaude/voucher-service/internal/config"
)

// TemplateInfo describes one selectable template.
type TemplateInfo struct {
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// TemplateService lists the template catalogs.
type TemplateService struct {
	cfg      *config.Config
	previews *PreviewService
}

func NewTemplateService(cfg *config.Config, previews *PreviewService) *TemplateService {
	return &TemplateService{cfg: cfg, previews: previews}
}

// ListVoucherTemplates returns the voucher template catalog, sorted by name,
// with the built-in etiqueta mode prepended.
func (s *TemplateService) ListVoucherTemplates() []TemplateInfo {
	names := listPDFs(s.cfg.VoucherTemplatesDir)
	templates := make([]TemplateInfo, 0, len(names)+1)
	templates = append(templates, TemplateInfo{
		Name:       EtiquetaTemplate,
		PreviewURL: s.previews.EnsurePreview("", EtiquetaTemplate),
	})
	for _, name := range names {
		templates = append(templates, TemplateInfo{
			Name:       name,
			PreviewURL: s.previews.EnsurePreview(filepath.Join(s.cfg.VoucherTemplatesDir, name), name),
		})
	}
	return templates
}

// ListInviteTemplates returns the invite template catalog, sorted by name.
func (s *TemplateService) ListInviteTemplates() []TemplateInfo {
	names := listPDFs(s.cfg.InviteTemplatesDir)
	templates := make([]TemplateInfo, 0, len(names))
	for _, name := range names {
		templates = append(templates, TemplateInfo{
			Name:       name,
			PreviewURL: s.previews.EnsurePreview(filepath.Join(s.cfg.InviteTemplatesDir, name), name),
		})
	}
	return templates
}

func listPDFs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: reading template dir %s: %v", dir, err)
		}
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}
