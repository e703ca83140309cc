package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/models"
	"github.com/mssaude/voucher-service/pkg/sanitize"
	"gorm.io/gorm"
)

// EtiquetaTemplate is the built-in label-sheet mode. It has no template
// file; pages are generated from scratch.
const EtiquetaTemplate = "etiqueta.pdf"

// DefaultVoucherTemplate is used when the caller selects nothing.
const DefaultVoucherTemplate = "template1.pdf"

// VoucherService orchestrates the voucher pipeline: parse the uploaded CSV,
// generate one QR asset per usable row, hand the batch to the layout engine
// and persist the finished PDF in the downloads area with a registry row.
type VoucherService struct {
	db  *gorm.DB
	cfg *config.Config
	csv *CSVService
	qr  *QRService
	pdf *PDFService
}

func NewVoucherService(db *gorm.DB, cfg *config.Config, csvSvc *CSVService, qrSvc *QRService, pdfSvc *PDFService) *VoucherService {
	return &VoucherService{db: db, cfg: cfg, csv: csvSvc, qr: qrSvc, pdf: pdfSvc}
}

// RequestFolderName scopes one upload's QR assets: CSV base name plus the
// current date, sanitized.
func RequestFolderName(originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	return sanitize.Filename(fmt.Sprintf("%s_%s", base, time.Now().Format("2006-01-02")))
}

// DownloadFileName names the persisted artifact for one upload. Two uploads
// sharing a base name on the same day overwrite each other; accepted, the
// files live for minutes.
func DownloadFileName(originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	return sanitize.Filename(fmt.Sprintf("%s_%s.pdf", base, time.Now().Format("2006-01-02")))
}

// Generate runs the full pipeline for one uploaded CSV and returns the
// registry row of the persisted artifact. The uploaded file and the
// request's QR assets are removed on success and on failure.
func (s *VoucherService) Generate(uploadPath, originalName, templateName, promoterID string) (*models.GeneratedFile, error) {
	folder := RequestFolderName(originalName)
	qrDir := filepath.Join(s.cfg.QRCodeDir, folder)

	defer func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			log.Printf("WARN: failed to remove uploaded CSV %s: %v", uploadPath, err)
		}
		if err := os.RemoveAll(qrDir); err != nil {
			log.Printf("WARN: failed to remove QR dir %s: %v", qrDir, err)
		}
	}()

	records, _, err := s.csv.Parse(uploadPath)
	if err != nil {
		return nil, err
	}

	if promoterID == "" {
		promoterID = s.cfg.DefaultPromoterID
	}
	if templateName == "" {
		templateName = DefaultVoucherTemplate
	}

	if err := os.MkdirAll(qrDir, 0o755); err != nil {
		return nil, err
	}

	var vouchers []Voucher
	for _, rec := range records {
		code := strings.TrimSpace(rec["code"])
		expiration := strings.TrimSpace(rec["expiration_date"])
		if code == "" || expiration == "" {
			log.Printf("WARN: skipping CSV row without code or expiration_date: %v", rec)
			continue
		}
		qrPath := filepath.Join(qrDir, VoucherAssetName(code, expiration))
		if err := s.qr.Generate(s.qr.BuildVoucherURL(rec, promoterID), qrPath); err != nil {
			return nil, err
		}
		vouchers = append(vouchers, Voucher{Code: code, Expiration: expiration})
	}
	if len(vouchers) == 0 {
		return nil, &InputError{Msg: "the CSV contains no usable voucher rows"}
	}

	var tmpPDF string
	if templateName == EtiquetaTemplate {
		tmpPDF, err = s.pdf.BuildEtiquetaPDF(vouchers, folder)
	} else {
		templatePath := filepath.Join(s.cfg.VoucherTemplatesDir, sanitize.Filename(templateName))
		if _, statErr := os.Stat(templatePath); statErr != nil {
			return nil, &InputError{Msg: fmt.Sprintf("template %s not found", templateName)}
		}
		tmpPDF, err = s.pdf.BuildVoucherPDF(templatePath, vouchers, folder)
	}
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpPDF)

	filename := DownloadFileName(originalName)
	if err := os.MkdirAll(s.cfg.DownloadsDir, 0o755); err != nil {
		return nil, err
	}
	outPath := filepath.Join(s.cfg.DownloadsDir, filename)
	if err := moveFile(tmpPDF, outPath); err != nil {
		return nil, fmt.Errorf("persisting %s: %w", filename, err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, err
	}

	generated := &models.GeneratedFile{
		Filename:     filename,
		Template:     templateName,
		SizeBytes:    info.Size(),
		VoucherCount: len(vouchers),
	}
	// same-name same-day artifacts overwrite; mirror that in the registry
	if err := s.db.Where("filename = ?", filename).Delete(&models.GeneratedFile{}).Error; err != nil {
		return nil, err
	}
	if err := s.db.Create(generated).Error; err != nil {
		return nil, err
	}

	log.Printf("Generated %s (%d vouchers, %d bytes)", filename, len(vouchers), info.Size())
	return generated, nil
}

// moveFile renames src to dst, falling back to a copy when the rename
// crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
