package services

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/models"
	"gorm.io/gorm"
)

// CleanupService is the janitor: it sweeps request-scoped directories for
// files past their age limit and prunes the download registry in step. The
// sweep does not coordinate with in-flight requests; the age limit is far
// above any realistic processing time, so the race is accepted.
type CleanupService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewCleanupService(db *gorm.DB, cfg *config.Config) *CleanupService {
	return &CleanupService{db: db, cfg: cfg}
}

// Sweep removes expired files from every working directory and drops
// registry rows whose artifacts are gone. Failures are logged, never
// escalated.
func (s *CleanupService) Sweep() {
	cutoff := time.Now().Add(-s.cfg.MaxFileAge)
	for _, dir := range []string{s.cfg.UploadsDir, s.cfg.QRCodeDir, s.cfg.DownloadsDir, s.cfg.TempOutputDir} {
		if err := s.sweepDir(dir, cutoff); err != nil {
			log.Printf("WARN: sweeping %s: %v", dir, err)
		}
	}
	s.pruneRegistry()
}

// sweepDir walks dir recursively, deleting files modified before cutoff and
// removing subdirectories the deletion emptied.
func (s *CleanupService) sweepDir(dir string, cutoff time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := s.sweepDir(full, cutoff); err != nil {
				log.Printf("WARN: sweeping %s: %v", full, err)
				continue
			}
			remaining, err := os.ReadDir(full)
			if err == nil && len(remaining) == 0 {
				if err := os.Remove(full); err != nil {
					log.Printf("WARN: removing empty dir %s: %v", full, err)
				}
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(full); err != nil {
				log.Printf("WARN: removing stale file %s: %v", full, err)
			} else {
				log.Printf("Removed stale file: %s", full)
			}
		}
	}
	return nil
}

// pruneRegistry drops rows whose download file was swept (or never made it
// to disk) and rows older than the age limit.
func (s *CleanupService) pruneRegistry() {
	if s.db == nil {
		return
	}
	var rows []models.GeneratedFile
	if err := s.db.Find(&rows).Error; err != nil {
		log.Printf("WARN: loading download registry: %v", err)
		return
	}
	cutoff := time.Now().UTC().Add(-s.cfg.MaxFileAge)
	for _, row := range rows {
		path := filepath.Join(s.cfg.DownloadsDir, row.Filename)
		_, statErr := os.Stat(path)
		if statErr == nil && !row.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.db.Delete(&models.GeneratedFile{}, "id = ?", row.ID).Error; err != nil {
			log.Printf("WARN: pruning registry row %s: %v", row.Filename, err)
		}
	}
}
