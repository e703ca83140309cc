package services

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mssaude/voucher-service/internal/config"
)

func TestCleanInviteCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABC123", "ABC123"},
		{"ABC123;;", "ABC123"},
		{"  ABC123 ; ", "ABC123"},
		{";;;", ""},
		{"  ", ""},
		{"A;B;;", "A;B"},
	}
	for _, tt := range tests {
		if got := CleanInviteCode(tt.in); got != tt.want {
			t.Errorf("CleanInviteCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInviteArchiveName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"convites_setembro.csv", "Convites_convites_setembro.zip"},
		{"/tmp/upload/lista.csv", "Convites_lista.zip"},
		{"codes", "Convites_codes.zip"},
	}
	for _, tt := range tests {
		if got := InviteArchiveName(tt.in); got != tt.want {
			t.Errorf("InviteArchiveName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteArchive(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ABC123_1-9.pdf": "first invite",
		"DEF456_1-9.pdf": "second invite",
		"notes.txt":      "should be skipped",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewInviteService(&config.Config{}, nil, nil, nil)
	var buf bytes.Buffer
	if err := svc.WriteArchive(&buf, dir); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive back: %v", err)
	}
	got := map[string]bool{}
	for _, f := range zr.File {
		got[f.Name] = true
	}
	if len(got) != 2 {
		t.Errorf("archive has %d entries, want 2: %v", len(got), got)
	}
	if !got["ABC123_1-9.pdf"] || !got["DEF456_1-9.pdf"] {
		t.Errorf("missing PDF entries: %v", got)
	}
	if got["notes.txt"] {
		t.Error("non-PDF file ended up in the archive")
	}
}

func TestComposeRejectsMissingTemplate(t *testing.T) {
	cfg := &config.Config{InviteTemplatesDir: t.TempDir()}
	svc := NewInviteService(cfg, NewCSVService(), NewQRService(cfg), NewPDFService(cfg))

	_, _, cleanup, err := svc.Compose("whatever.csv", "nope.pdf")
	cleanup()
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, ok := err.(*InputError); !ok {
		t.Errorf("error type = %T, want *InputError", err)
	}

	_, _, cleanup, err = svc.Compose("whatever.csv", "")
	cleanup()
	if _, ok := err.(*InputError); !ok {
		t.Errorf("empty template: error type = %T, want *InputError", err)
	}
}
