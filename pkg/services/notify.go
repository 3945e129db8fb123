package services

import (
	"context"
	"log"
	"time"

	"slashchat/models"
	"slashchat/pkg/realtime"

	"gorm.io/gorm"
)

// Notifier decides, per recipient, whether to send a push message for a new
// chat message. Push is a best-effort side channel: failures are logged and
// swallowed, never retried, and never affect the message write path.
type Notifier struct {
	db      *gorm.DB
	push    PushSender
	timeout time.Duration
}

func NewNotifier(db *gorm.DB, push PushSender, timeout time.Duration) *Notifier {
	return &Notifier{db: db, push: push, timeout: timeout}
}

// Notify fans a push notification out to every member of the chat except the
// sender, skipping each recipient that muted the chat. The mute flag is
// evaluated per recipient; the sender's own flag is irrelevant here.
func (n *Notifier) Notify(chatID string, senderID uint, msg realtime.MessageView) {
	var tokens []string
	err := n.db.Model(&models.Device{}).
		Joins("JOIN chat_members ON chat_members.user_id = devices.user_id").
		Where("chat_members.chat_id = ?", chatID).
		Where("chat_members.user_id <> ?", senderID).
		Where("chat_members.muted = ?", false).
		Where("devices.push_token <> ''").
		Pluck("devices.push_token", &tokens).Error
	if err != nil {
		log.Printf("[notify] recipient lookup for chat %s: %v", chatID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.push.Deliver(ctx, tokens, notificationFor(msg)); err != nil {
		log.Printf("[notify] push delivery for chat %s: %v", chatID, err)
	}
}

func notificationFor(msg realtime.MessageView) Notification {
	body := ""
	switch msg.Type {
	case models.MessageTypeImage:
		body = "sent a photo"
	case models.MessageTypeLocation:
		body = "shared a location"
	default:
		if msg.Content != nil {
			body = truncate(*msg.Content, 120)
		}
	}
	return Notification{Title: msg.Name, Body: body}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
