package realtime

import (
	"encoding/json"
	"time"
)

// Event discriminators sent to live connections.
const (
	EventNewMessage  = "new_message"
	EventChatDeleted = "chat_deleted"
	EventConnected   = "connected"
)

// MessageView is the outward representation of a message: the persisted row
// plus denormalized sender identity. Messages are never shown without it.
type MessageView struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Content     *string          `json:"content"`
	SenderID    uint             `json:"senderId"`
	CreatedAt   time.Time        `json:"createdAt"`
	Name        string           `json:"name"`
	Image       string           `json:"image,omitempty"`
	Attachments []AttachmentView `json:"attachments"`
}

type AttachmentView struct {
	ID       string          `json:"id"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Location json.RawMessage `json:"location,omitempty"`
}

// Event is the wire payload pushed over live connections. Type discriminates
// which optional body fields are set.
type Event struct {
	Type    string       `json:"type"`
	ChatID  string       `json:"chatId,omitempty"`
	Message *MessageView `json:"message,omitempty"`
}

func NewMessageEvent(chatID string, msg MessageView) Event {
	return Event{Type: EventNewMessage, ChatID: chatID, Message: &msg}
}

func ChatDeletedEvent(chatID string) Event {
	return Event{Type: EventChatDeleted, ChatID: chatID}
}

func ConnectedEvent() Event {
	return Event{Type: EventConnected}
}
