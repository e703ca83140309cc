package services

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/pkg/sanitize"
)

// InviteService turns a single-column CSV of invite codes into one stamped
// PDF per code and streams them as a ZIP archive.
type InviteService struct {
	cfg *config.Config
	csv *CSVService
	qr  *QRService
	pdf *PDFService
}

func NewInviteService(cfg *config.Config, csvSvc *CSVService, qrSvc *QRService, pdfSvc *PDFService) *InviteService {
	return &InviteService{cfg: cfg, csv: csvSvc, qr: qrSvc, pdf: pdfSvc}
}

// CleanInviteCode strips trailing semicolon runs and surrounding whitespace
// from a raw first-column value. Exports from the upstream system pad codes
// with empty trailing fields, which show up here as ";;".
func CleanInviteCode(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, ";")
	return strings.TrimSpace(s)
}

// InviteArchiveName is the ZIP name derived from the uploaded CSV's name.
func InviteArchiveName(originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	return "Convites_" + sanitize.Filename(base) + ".zip"
}

// Compose generates one stamped invite PDF per valid code into a fresh
// session directory and returns its path together with the invite count and
// a cleanup func the caller must run once the archive has been written.
func (s *InviteService) Compose(uploadPath, templateName string) (string, int, func(), error) {
	noop := func() {}
	if templateName == "" {
		return "", 0, noop, &InputError{Msg: "no invite template selected"}
	}
	templatePath := filepath.Join(s.cfg.InviteTemplatesDir, sanitize.Filename(templateName))
	if _, err := os.Stat(templatePath); err != nil {
		return "", 0, noop, &InputError{Msg: fmt.Sprintf("invite template %s not found", templateName)}
	}

	records, headers, err := s.csv.Parse(uploadPath)
	if err != nil {
		return "", 0, noop, err
	}

	session := "session_" + uuid.New().String()
	pdfDir := filepath.Join(s.cfg.TempOutputDir, session)
	qrDir := filepath.Join(s.cfg.QRCodeDir, session)
	cleanup := func() {
		if err := os.RemoveAll(pdfDir); err != nil {
			log.Printf("WARN: failed to remove invite session dir %s: %v", pdfDir, err)
		}
		if err := os.RemoveAll(qrDir); err != nil {
			log.Printf("WARN: failed to remove invite QR dir %s: %v", qrDir, err)
		}
	}
	for _, dir := range []string{pdfDir, qrDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, cleanup, err
		}
	}

	// Row one was consumed as the CSV header; the first parsed record is the
	// exports' secondary label row and is discarded as well.
	if len(records) < 2 || len(headers) == 0 {
		return "", 0, cleanup, &InputError{Msg: "the CSV contains no invite data from the third row on"}
	}
	data := records[1:]

	count := 0
	now := time.Now()
	for _, rec := range data {
		code := CleanInviteCode(rec[headers[0]])
		if code == "" {
			log.Printf("WARN: skipping invite row with empty code")
			continue
		}

		qrPath := filepath.Join(qrDir, sanitize.Filename(code)+".png")
		if err := s.qr.Generate(code, qrPath); err != nil {
			return "", 0, cleanup, err
		}

		pdfName := fmt.Sprintf("%s_%d-%d.pdf", sanitize.Filename(code), now.Day(), int(now.Month()))
		if err := s.pdf.StampInvite(templatePath, qrPath, code, filepath.Join(pdfDir, pdfName)); err != nil {
			return "", 0, cleanup, err
		}
		count++
	}

	if count == 0 {
		return "", 0, cleanup, &InputError{Msg: "the CSV contains no valid invite codes"}
	}

	// Refuse to ship an archive of empty documents.
	total, err := dirTotalSize(pdfDir)
	if err != nil {
		return "", 0, cleanup, err
	}
	if total == 0 {
		return "", 0, cleanup, &GenerationError{Msg: "no invites could be generated; the produced files were empty. Check the CSV data and the template PDF"}
	}

	log.Printf("Generated %d invites (%d bytes)", count, total)
	return pdfDir, count, cleanup, nil
}

// WriteArchive streams every PDF in dir into w as a ZIP with maximum
// deflate compression.
func (s *InviteService) WriteArchive(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Name(),
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		})
		if err != nil {
			return err
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		_, err = io.Copy(fw, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return zw.Close()
}

func dirTotalSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
