package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"slashchat/models"
	"slashchat/pkg/cache"
	"slashchat/pkg/realtime"

	"gorm.io/gorm"
)

// CreateMessageInput carries the typed payload of an incoming message.
// Exactly one of Content/Image/Location is meaningful, per Type.
type CreateMessageInput struct {
	Type      string
	Content   string
	Image     []byte
	ImageName string
	Location  json.RawMessage
}

// MessageService is the message pipeline: validate, persist message plus its
// typed attachment, assemble the outward view with denormalized sender
// identity, broadcast synchronously, then notify without waiting.
type MessageService struct {
	db       *gorm.DB
	files    *FileStore
	users    *cache.Cache
	userTTL  time.Duration
	bcast    *realtime.Broadcaster
	notifier *Notifier
}

func NewMessageService(db *gorm.DB, files *FileStore, users *cache.Cache, userTTL time.Duration, bcast *realtime.Broadcaster, notifier *Notifier) *MessageService {
	return &MessageService{db: db, files: files, users: users, userTTL: userTTL, bcast: bcast, notifier: notifier}
}

// Create validates and persists a message from senderID into chatID, fans it
// out to live subscribers, and triggers push notification dispatch in the
// background. The notification outcome never affects the returned result.
func (s *MessageService) Create(chatID string, senderID uint, in CreateMessageInput) (realtime.MessageView, error) {
	var member models.ChatMember
	if err := s.db.Where("chat_id = ? AND user_id = ?", chatID, senderID).First(&member).Error; err != nil {
		return realtime.MessageView{}, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}

	msg := models.Message{ChatID: chatID, SenderID: senderID, Type: in.Type}
	var att *models.Attachment

	switch in.Type {
	case models.MessageTypeText:
		content := strings.TrimSpace(in.Content)
		if content == "" {
			return realtime.MessageView{}, fmt.Errorf("%w: content is required", ErrValidation)
		}
		msg.Content = &content
	case models.MessageTypeImage:
		if len(in.Image) == 0 {
			return realtime.MessageView{}, fmt.Errorf("%w: image payload is required", ErrValidation)
		}
		att = &models.Attachment{}
	case models.MessageTypeLocation:
		if len(in.Location) == 0 || !json.Valid(in.Location) {
			return realtime.MessageView{}, fmt.Errorf("%w: location payload must be valid JSON", ErrValidation)
		}
		att = &models.Attachment{}
	default:
		return realtime.MessageView{}, fmt.Errorf("%w: unknown message type %q", ErrValidation, in.Type)
	}

	// The message row goes first so it owns its identity and durable
	// timestamp before anything is broadcast.
	if err := s.db.Create(&msg).Error; err != nil {
		return realtime.MessageView{}, err
	}

	if att != nil {
		att.MessageID = msg.ID
		switch in.Type {
		case models.MessageTypeImage:
			fileID, err := s.files.Save(in.Image, contentTypeFor(in.ImageName))
			if err != nil {
				return realtime.MessageView{}, err
			}
			att.ImageFileID = &fileID
		case models.MessageTypeLocation:
			loc := string(in.Location)
			att.LocationJSON = &loc
		}
		if err := s.db.Create(att).Error; err != nil {
			return realtime.MessageView{}, err
		}
		msg.Attachments = []models.Attachment{*att}
	}

	view := s.View(&msg)
	s.bcast.Broadcast(chatID, realtime.NewMessageEvent(chatID, view))
	s.notifyDetached(chatID, senderID, view)
	return view, nil
}

// CreateSystem inserts and broadcasts a lifecycle announcement authored by
// the reserved system sender. Push dispatch is optional: chat creation
// notifies members, a member leaving does not.
func (s *MessageService) CreateSystem(chatID, content string, notify bool) (realtime.MessageView, error) {
	msg := models.Message{
		ChatID:   chatID,
		SenderID: models.SystemSenderID,
		Type:     models.MessageTypeSystem,
		Content:  &content,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return realtime.MessageView{}, err
	}
	view := s.View(&msg)
	s.bcast.Broadcast(chatID, realtime.NewMessageEvent(chatID, view))
	if notify {
		s.notifyDetached(chatID, models.SystemSenderID, view)
	}
	return view, nil
}

// View assembles the outward representation of a persisted message:
// denormalized sender name/avatar plus attachment URLs.
func (s *MessageService) View(m *models.Message) realtime.MessageView {
	name, image := s.senderView(m.SenderID)
	view := realtime.MessageView{
		ID:          m.ID,
		Type:        m.Type,
		Content:     m.Content,
		SenderID:    m.SenderID,
		CreatedAt:   m.CreatedAt,
		Name:        name,
		Image:       image,
		Attachments: []realtime.AttachmentView{},
	}
	for _, a := range m.Attachments {
		av := realtime.AttachmentView{ID: a.ID}
		if a.ImageFileID != nil {
			av.ImageURL = s.files.URL(*a.ImageFileID)
		}
		if a.LocationJSON != nil {
			av.Location = json.RawMessage(*a.LocationJSON)
		}
		view.Attachments = append(view.Attachments, av)
	}
	return view
}

// InvalidateUser drops the cached display metadata for a user. Called when a
// profile changes.
func (s *MessageService) InvalidateUser(userID uint) {
	s.users.Delete(userViewKey(userID))
}

type userView struct {
	Name  string
	Image string
}

func userViewKey(userID uint) string {
	return cache.KeyFromStrings("user-view", strconv.FormatUint(uint64(userID), 10))
}

func (s *MessageService) senderView(userID uint) (string, string) {
	if userID == models.SystemSenderID {
		return "system", ""
	}
	key := userViewKey(userID)
	if v, ok := s.users.Get(key); ok {
		if uv, ok2 := v.(userView); ok2 {
			return uv.Name, uv.Image
		}
	}
	var u models.User
	if err := s.db.First(&u, userID).Error; err != nil {
		log.Printf("[messages] sender %d lookup: %v", userID, err)
		return "", ""
	}
	uv := userView{Name: u.Name, Image: s.files.URL(u.AvatarFileID)}
	s.users.Set(key, uv, s.userTTL)
	return uv.Name, uv.Image
}

// notifyDetached hands off to the notification dispatcher on its own
// goroutine with its own error boundary, so a slow or failing push provider
// can never block or fail the sender's request.
func (s *MessageService) notifyDetached(chatID string, senderID uint, view realtime.MessageView) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[notify] panic recovered for chat %s: %v", chatID, r)
			}
		}()
		s.notifier.Notify(chatID, senderID, view)
	}()
}
