package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeneratedFile is the expiry registry row for a persisted download artifact.
// The janitor deletes rows together with the files they describe, so the
// downloads listing never advertises a file that has already been swept.
type GeneratedFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;uniqueIndex" json:"filename"`
	Template     string    `gorm:"size:120" json:"template"`
	SizeBytes    int64     `json:"size_bytes"`
	VoucherCount int       `json:"voucher_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GeneratedFile) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
