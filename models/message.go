package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeLocation = "location"
	MessageTypeSystem   = "system"
)

// SystemSenderID is the reserved sender for lifecycle announcements
// ("X created the chat", "X has left"). No user row exists with id 0.
const SystemSenderID uint = 0

// Message is immutable once created: rows are only ever inserted.
type Message struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ChatID    string    `gorm:"size:36;not null;index"`
	SenderID  uint      `gorm:"not null;index"`
	Type      string    `gorm:"size:10;not null;default:text"`
	Content   *string   `gorm:"type:text"` // nil for non-text types
	CreatedAt time.Time `gorm:"index"`

	Attachments []Attachment `gorm:"constraint:OnDelete:CASCADE"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Attachment carries exactly one populated payload slot, matching the parent
// message type: a stored file id for image, serialized coordinates for
// location. At most one attachment per message.
type Attachment struct {
	ID           string  `gorm:"primaryKey;size:36"`
	MessageID    string  `gorm:"size:36;not null;index"`
	ImageFileID  *string `gorm:"size:36"`
	LocationJSON *string `gorm:"type:text"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
