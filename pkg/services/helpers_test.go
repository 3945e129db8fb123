package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"slashchat/models"
	"slashchat/pkg/cache"
	"slashchat/pkg/realtime"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db handle: %v", err)
	}
	// one connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	err = db.AutoMigrate(
		&models.User{}, &models.Chat{}, &models.ChatMember{},
		&models.Message{}, &models.Attachment{}, &models.Device{}, &models.File{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	reg      *realtime.Registry
	bcast    *realtime.Broadcaster
	files    *FileStore
	push     *fakePush
	notifier *Notifier
	messages *MessageService
	chats    *ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	reg := realtime.NewRegistry()
	bcast := realtime.NewBroadcaster(reg)
	files := NewFileStore(db, t.TempDir(), "http://localhost:5000/files", "test-secret")
	push := &fakePush{}
	notifier := NewNotifier(db, push, time.Second)
	messages := NewMessageService(db, files, cache.New(100), time.Minute, bcast, notifier)
	chats := NewChatService(db, reg, bcast, messages)
	return &testEnv{
		db: db, reg: reg, bcast: bcast, files: files,
		push: push, notifier: notifier, messages: messages, chats: chats,
	}
}

func mustUser(t *testing.T, db *gorm.DB, username, name string) *models.User {
	t.Helper()
	u := models.User{Email: username + "@example.com", Username: username, Name: name}
	if err := u.SetPassword("secret123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &u
}

func mustDevice(t *testing.T, db *gorm.DB, userID uint, token string) {
	t.Helper()
	if err := db.Create(&models.Device{UserID: userID, PushToken: token}).Error; err != nil {
		t.Fatalf("create device for user %d: %v", userID, err)
	}
}

// fakePush records every delivery attempt.
type fakePush struct {
	mu    sync.Mutex
	calls [][]string
	notes []Notification
	err   error
}

func (f *fakePush) Deliver(ctx context.Context, tokens []string, n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), tokens...))
	f.notes = append(f.notes, n)
	return f.err
}

func (f *fakePush) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeConn records broadcast payloads for one user.
type fakeConn struct {
	userID uint
	mu     sync.Mutex
	sent   [][]byte
	fail   bool
}

func (f *fakeConn) UserID() uint { return f.userID }

func (f *fakeConn) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.Canceled
	}
	f.sent = append(f.sent, append([]byte(nil), payload...))
	return nil
}

func (f *fakeConn) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// lastEvent decodes the most recent payload the connection received.
func (f *fakeConn) lastEvent(t *testing.T) realtime.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("connection for user %d received nothing", f.userID)
	}
	var ev realtime.Event
	if err := json.Unmarshal(f.sent[len(f.sent)-1], &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return ev
}
