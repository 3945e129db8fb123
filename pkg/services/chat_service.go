package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"slashchat/models"
	"slashchat/pkg/realtime"

	"gorm.io/gorm"
)

// ChatService manages the conversation lifecycle: creation with direct-chat
// deduplication, membership, leave/delete semantics, per-member flags and the
// read-only projections. It owns the registry (un)subscriptions that follow
// membership changes.
type ChatService struct {
	db       *gorm.DB
	reg      *realtime.Registry
	bcast    *realtime.Broadcaster
	messages *MessageService
}

func NewChatService(db *gorm.DB, reg *realtime.Registry, bcast *realtime.Broadcaster, messages *MessageService) *ChatService {
	return &ChatService{db: db, reg: reg, bcast: bcast, messages: messages}
}

// ChatSummary is the list projection: derived name plus last message.
type ChatSummary struct {
	ID          string                `json:"id"`
	Kind        string                `json:"kind"`
	Name        string                `json:"name"`
	Pinned      bool                  `json:"pinned"`
	Muted       bool                  `json:"muted"`
	CreatedAt   time.Time             `json:"created_at"`
	LastMessage *realtime.MessageView `json:"last_message,omitempty"`
}

type Participant struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role"`
}

type ChatDetail struct {
	ID           string        `json:"id"`
	Kind         string        `json:"kind"`
	Name         string        `json:"name"`
	Pinned       bool          `json:"pinned"`
	Muted        bool          `json:"muted"`
	CreatedAt    time.Time     `json:"created_at"`
	Participants []Participant `json:"participants"`
}

// Create starts a chat from creatorID to targetIDs. One target means a direct
// chat, deduplicated on the normalized pair: an existing chat is returned
// as-is. Multiple targets mean a group, which requires a name. The creator
// gets the admin role, targets get member. Already-connected members are
// subscribed immediately and a system message announces the creation.
func (s *ChatService) Create(creatorID uint, targetIDs []uint, name string) (*models.Chat, bool, error) {
	targets := dedupeIDs(targetIDs, creatorID)
	if len(targets) == 0 {
		return nil, false, fmt.Errorf("%w: at least one member is required", ErrValidation)
	}

	chat := models.Chat{}
	if len(targets) == 1 {
		chat.Kind = models.ChatKindDirect
		key := models.DirectKeyFor(creatorID, targets[0])
		chat.DirectKey = &key

		var existing models.Chat
		if err := s.db.Where("direct_key = ?", key).First(&existing).Error; err == nil {
			return &existing, false, nil
		} else if err != gorm.ErrRecordNotFound {
			return nil, false, err
		}
	} else {
		chat.Kind = models.ChatKindGroup
		chat.Name = strings.TrimSpace(name)
		if chat.Name == "" {
			return nil, false, fmt.Errorf("%w: a group chat requires a name", ErrValidation)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		members := []models.ChatMember{{ChatID: chat.ID, UserID: creatorID, Role: models.RoleAdmin}}
		for _, uid := range targets {
			members = append(members, models.ChatMember{ChatID: chat.ID, UserID: uid, Role: models.RoleMember})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		// Two concurrent creates for the same pair: the unique direct key
		// makes the loser's insert fail; resolve to the winning row.
		if chat.DirectKey != nil && isDuplicateErr(err) {
			var winner models.Chat
			if rerr := s.db.Where("direct_key = ?", *chat.DirectKey).First(&winner).Error; rerr == nil {
				return &winner, false, nil
			}
		}
		return nil, false, err
	}

	memberIDs := append([]uint{creatorID}, targets...)
	s.reg.SubscribeUsers(chat.ID, memberIDs)
	if _, err := s.messages.CreateSystem(chat.ID, fmt.Sprintf("%s created the chat", s.displayName(creatorID)), true); err != nil {
		log.Printf("[chats] creation announcement for %s: %v", chat.ID, err)
	}
	return &chat, true, nil
}

// Delete removes actorID from the chat. For a direct chat, or when the actor
// is a group admin, the whole chat with all memberships and messages goes
// away and remaining live subscribers are told before being dropped.
// Otherwise only the actor's membership is removed and a system message
// announces the departure. Returns whether the chat itself was deleted.
func (s *ChatService) Delete(chatID string, actorID uint) (bool, error) {
	var member models.ChatMember
	if err := s.db.Where("chat_id = ? AND user_id = ?", chatID, actorID).First(&member).Error; err != nil {
		return false, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	var chat models.Chat
	if err := s.db.First(&chat, "id = ?", chatID).Error; err != nil {
		return false, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}

	if chat.Kind == models.ChatKindDirect || member.Role == models.RoleAdmin {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			sub := tx.Model(&models.Message{}).Select("id").Where("chat_id = ?", chatID)
			if err := tx.Where("message_id IN (?)", sub).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("chat_id = ?", chatID).Delete(&models.Message{}).Error; err != nil {
				return err
			}
			if err := tx.Where("chat_id = ?", chatID).Delete(&models.ChatMember{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Chat{}, "id = ?", chatID).Error
		})
		if err != nil {
			return false, err
		}
		conns := s.reg.DropChat(chatID)
		s.bcast.SendTo(conns, realtime.ChatDeletedEvent(chatID))
		return true, nil
	}

	// Group member leaving: only their membership row goes; the chat and the
	// other memberships stay.
	if err := s.db.Where("chat_id = ? AND user_id = ?", chatID, actorID).Delete(&models.ChatMember{}).Error; err != nil {
		return false, err
	}
	if _, err := s.messages.CreateSystem(chatID, fmt.Sprintf("%s has left", s.displayName(actorID)), false); err != nil {
		log.Printf("[chats] leave announcement for %s: %v", chatID, err)
	}
	s.reg.Unsubscribe(chatID, actorID)
	return false, nil
}

// SetFlags updates the caller's own pinned/muted membership flags. Nil leaves
// a flag untouched. No fan-out side effect.
func (s *ChatService) SetFlags(chatID string, userID uint, pinned, muted *bool) error {
	var member models.ChatMember
	if err := s.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member).Error; err != nil {
		return fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	updates := map[string]any{}
	if pinned != nil {
		updates["pinned"] = *pinned
	}
	if muted != nil {
		updates["muted"] = *muted
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&models.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Updates(updates).Error
}

// List returns the user's chat summaries, pinned first, then by last
// activity.
func (s *ChatService) List(userID uint) ([]ChatSummary, error) {
	var memberships []models.ChatMember
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(memberships))
	for _, m := range memberships {
		var chat models.Chat
		if err := s.db.First(&chat, "id = ?", m.ChatID).Error; err != nil {
			continue
		}
		summary := ChatSummary{
			ID:        chat.ID,
			Kind:      chat.Kind,
			Name:      chat.Name,
			Pinned:    m.Pinned,
			Muted:     m.Muted,
			CreatedAt: chat.CreatedAt,
		}
		if chat.Kind == models.ChatKindDirect {
			summary.Name = s.directName(chat.ID, userID)
		}
		var last models.Message
		if err := s.db.Preload("Attachments").Where("chat_id = ?", chat.ID).
			Order("created_at DESC").First(&last).Error; err == nil {
			view := s.messages.View(&last)
			summary.LastMessage = &view
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Pinned != summaries[j].Pinned {
			return summaries[i].Pinned
		}
		return lastActivity(summaries[j]).Before(lastActivity(summaries[i]))
	})
	return summaries, nil
}

// Get returns the chat detail with its participant list. NotFound when the
// caller is not a member.
func (s *ChatService) Get(chatID string, userID uint) (*ChatDetail, error) {
	var member models.ChatMember
	if err := s.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member).Error; err != nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	var chat models.Chat
	if err := s.db.Preload("Members").First(&chat, "id = ?", chatID).Error; err != nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}

	detail := ChatDetail{
		ID:        chat.ID,
		Kind:      chat.Kind,
		Name:      chat.Name,
		Pinned:    member.Pinned,
		Muted:     member.Muted,
		CreatedAt: chat.CreatedAt,
	}
	if chat.Kind == models.ChatKindDirect {
		detail.Name = s.directName(chat.ID, userID)
	}
	for _, m := range chat.Members {
		var u models.User
		if err := s.db.First(&u, m.UserID).Error; err != nil {
			continue
		}
		detail.Participants = append(detail.Participants, Participant{
			ID:    u.ID,
			Name:  u.Name,
			Image: s.messages.files.URL(u.AvatarFileID),
			Role:  m.Role,
		})
	}
	return &detail, nil
}

// ChatIDsFor lists the ids of every chat the user belongs to. Used to
// subscribe a fresh connection on open.
func (s *ChatService) ChatIDsFor(userID uint) ([]string, error) {
	var ids []string
	err := s.db.Model(&models.ChatMember{}).Where("user_id = ?", userID).Pluck("chat_id", &ids).Error
	return ids, err
}

// directName derives a direct chat's display name from the other participant.
func (s *ChatService) directName(chatID string, viewerID uint) string {
	var other models.ChatMember
	if err := s.db.Where("chat_id = ? AND user_id <> ?", chatID, viewerID).First(&other).Error; err != nil {
		return ""
	}
	return s.displayName(other.UserID)
}

func (s *ChatService) displayName(userID uint) string {
	name, _ := s.messages.senderView(userID)
	return name
}

func lastActivity(s ChatSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}

func dedupeIDs(ids []uint, exclude uint) []uint {
	seen := map[uint]struct{}{exclude: {}}
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
