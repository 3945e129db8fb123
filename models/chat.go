package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChatKindDirect = "direct"
	ChatKindGroup  = "group"

	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Chat struct {
	ID   string `gorm:"primaryKey;size:36"`
	Kind string `gorm:"size:10;not null;default:direct"`
	Name string `gorm:"size:200"`
	// DirectKey is "<minUserID>:<maxUserID>" for direct chats, NULL for
	// groups. The unique index makes two concurrent creates for the same
	// pair collapse onto one row.
	DirectKey *string   `gorm:"uniqueIndex;size:50"`
	CreatedAt time.Time

	Members  []ChatMember `gorm:"constraint:OnDelete:CASCADE"`
	Messages []Message    `gorm:"constraint:OnDelete:CASCADE"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DirectKeyFor normalizes a user pair into the unique direct-chat key,
// ignoring argument order.
func DirectKeyFor(a, b uint) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ChatMember is the durable membership relation. Role is only meaningful for
// group chats; pinned/muted are per-member flags mutable only by that member.
type ChatMember struct {
	ChatID    string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"primaryKey"`
	Role      string `gorm:"size:10;not null;default:member"`
	Pinned    bool   `gorm:"not null;default:false"`
	Muted     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
