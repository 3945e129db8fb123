package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"slashchat/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxAvatarSize is the hard cap for profile images. Message image size policy
// is delegated to this store via MaxObjectSize.
const (
	MaxAvatarSize = 1 << 20 // 1 MiB
	MaxObjectSize = 8 << 20
)

// FileStore is the binary object storage collaborator: bytes in, stable
// content id out. Objects live on disk under basePath keyed by id, with a
// File row per object.
type FileStore struct {
	db        *gorm.DB
	basePath  string
	baseURL   string
	secretKey string
}

func NewFileStore(db *gorm.DB, basePath, baseURL, secretKey string) *FileStore {
	os.MkdirAll(basePath, 0755)
	return &FileStore{db: db, basePath: basePath, baseURL: baseURL, secretKey: secretKey}
}

// Save stores raw bytes and returns the new object id.
func (s *FileStore) Save(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrValidation)
	}
	if len(data) > MaxObjectSize {
		return "", fmt.Errorf("%w: file too large", ErrValidation)
	}
	f := models.File{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	f.Path = filepath.Join(s.basePath, f.ID)
	if err := os.WriteFile(f.Path, data, 0644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := s.db.Create(&f).Error; err != nil {
		os.Remove(f.Path)
		return "", err
	}
	return f.ID, nil
}

// Lookup resolves an object id to its File row.
func (s *FileStore) Lookup(id string) (*models.File, error) {
	var f models.File
	if err := s.db.First(&f, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: file %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &f, nil
}

// URL returns the public URL for an object id; empty in, empty out.
func (s *FileStore) URL(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", s.baseURL, id)
}

// GenerateUploadToken issues a short-lived signed token authorizing one
// avatar upload for the user.
func (s *FileStore) GenerateUploadToken(userID uint) string {
	return s.signedToken(userID, time.Now().Unix())
}

// ValidateUploadToken checks signature, owner and the 15 minute expiry.
func (s *FileStore) ValidateUploadToken(token string, userID uint) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	tokenUserID, _ := strconv.ParseUint(parts[0], 10, 32)
	timestamp, _ := strconv.ParseInt(parts[1], 10, 64)
	if uint(tokenUserID) != userID {
		return false
	}
	if time.Now().Unix()-timestamp > 15*60 {
		return false
	}
	expected := strings.Split(s.signedToken(userID, timestamp), ".")
	return hmac.Equal([]byte(parts[2]), []byte(expected[2]))
}

// SaveAvatar validates and stores a profile image, returning its object id.
func (s *FileStore) SaveAvatar(userID uint, data []byte, filename, token string) (string, error) {
	if !s.ValidateUploadToken(token, userID) {
		return "", fmt.Errorf("%w: invalid upload token", ErrValidation)
	}
	if !isValidImageName(filename) {
		return "", fmt.Errorf("%w: only JPG, PNG, GIF, WEBP allowed", ErrValidation)
	}
	if len(data) > MaxAvatarSize {
		return "", fmt.Errorf("%w: image exceeds 1MB limit", ErrValidation)
	}
	return s.Save(data, contentTypeFor(filename))
}

func (s *FileStore) signedToken(userID uint, timestamp int64) string {
	message := fmt.Sprintf("%d:%d", userID, timestamp)
	h := hmac.New(sha256.New, []byte(s.secretKey))
	h.Write([]byte(message))
	return fmt.Sprintf("%d.%d.%s", userID, timestamp, hex.EncodeToString(h.Sum(nil)))
}

func isValidImageName(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, valid := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if ext == valid {
			return true
		}
	}
	return false
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
