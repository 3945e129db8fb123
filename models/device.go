package models

import "time"

// Device maps a user to a push token. Rows are never actively deleted; stale
// tokens just fail silently at the push transport.
type Device struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_device_user_token"`
	PushToken string `gorm:"size:200;not null;uniqueIndex:idx_device_user_token"`
	CreatedAt time.Time
}
