package services

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestFileStoreSaveAndLookup(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("fake image bytes")

	id, err := env.files.Save(data, "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	f, err := env.files.Lookup(id)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if f.ContentType != "image/png" || f.Size != int64(len(data)) {
		t.Fatalf("metadata: type=%q size=%d", f.ContentType, f.Size)
	}
	stored, err := os.ReadFile(f.Path)
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(stored) != string(data) {
		t.Fatalf("stored bytes differ from input")
	}

	if got, want := env.files.URL(id), fmt.Sprintf("http://localhost:5000/files/%s", id); got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
	if env.files.URL("") != "" {
		t.Fatalf("empty id must yield empty url")
	}
}

func TestFileStoreLookupMissing(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.files.Lookup("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file: got %v", err)
	}
}

func TestFileStoreSaveRejectsBadSizes(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.files.Save(nil, "image/png"); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty payload: got %v", err)
	}
	if _, err := env.files.Save(make([]byte, MaxObjectSize+1), "image/png"); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized payload: got %v", err)
	}
}

func TestUploadTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.files.GenerateUploadToken(7)

	if !env.files.ValidateUploadToken(token, 7) {
		t.Fatalf("fresh token must validate for its owner")
	}
	if env.files.ValidateUploadToken(token, 8) {
		t.Fatalf("token must not validate for another user")
	}
	if env.files.ValidateUploadToken("garbage", 7) {
		t.Fatalf("malformed token must not validate")
	}
	if env.files.ValidateUploadToken(token+"x", 7) {
		t.Fatalf("tampered signature must not validate")
	}

	expired := env.files.signedToken(7, time.Now().Add(-16*time.Minute).Unix())
	if env.files.ValidateUploadToken(expired, 7) {
		t.Fatalf("expired token must not validate")
	}
}

func TestSaveAvatar(t *testing.T) {
	env := newTestEnv(t)
	token := env.files.GenerateUploadToken(7)

	id, err := env.files.SaveAvatar(7, []byte("avatar"), "me.jpg", token)
	if err != nil {
		t.Fatalf("save avatar: %v", err)
	}
	f, err := env.files.Lookup(id)
	if err != nil {
		t.Fatalf("lookup avatar: %v", err)
	}
	if f.ContentType != "image/jpeg" {
		t.Fatalf("avatar content type = %q", f.ContentType)
	}

	if _, err := env.files.SaveAvatar(7, []byte("x"), "evil.exe", token); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad extension: got %v", err)
	}
	if _, err := env.files.SaveAvatar(7, make([]byte, MaxAvatarSize+1), "big.png", token); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized avatar: got %v", err)
	}
	if _, err := env.files.SaveAvatar(8, []byte("x"), "me.png", token); !errors.Is(err, ErrValidation) {
		t.Fatalf("foreign token: got %v", err)
	}
}
