package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mssaude/voucher-service/internal/config"
)

func TestListVoucherTemplates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"template2.pdf", "template1.pdf", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := &config.Config{VoucherTemplatesDir: dir, PreviewsDir: t.TempDir()}
	svc := NewTemplateService(cfg, NewPreviewService(cfg))

	got := svc.ListVoucherTemplates()
	want := []string{EtiquetaTemplate, "template1.pdf", "template2.pdf"}
	if len(got) != len(want) {
		t.Fatalf("got %d templates, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("templates[%d] = %q, want %q", i, got[i].Name, w)
		}
	}
}

func TestListInviteTemplatesMissingDir(t *testing.T) {
	cfg := &config.Config{
		InviteTemplatesDir: filepath.Join(t.TempDir(), "nope"),
		PreviewsDir:        t.TempDir(),
	}
	svc := NewTemplateService(cfg, NewPreviewService(cfg))
	if got := svc.ListInviteTemplates(); len(got) != 0 {
		t.Errorf("missing dir should yield no templates, got %v", got)
	}
}
