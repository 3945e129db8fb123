package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File records a stored binary object. The bytes live on disk under the
// object store's base path, keyed by ID.
type File struct {
	ID          string `gorm:"primaryKey;size:36"`
	Path        string `gorm:"size:500;not null"`
	ContentType string `gorm:"size:100"`
	Size        int64
	CreatedAt   time.Time
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
