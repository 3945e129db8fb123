package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slashchat/pkg/config"
	tokenstore "slashchat/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, sub string, jti string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"jti": jti,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestParseToken(t *testing.T) {
	jti := uuid.NewString()
	uid, gotJTI, err := ParseToken(signToken(t, "42", jti))
	if err != nil {
		t.Fatalf("parse valid token: %v", err)
	}
	if uid != 42 || gotJTI != jti {
		t.Fatalf("parsed uid=%d jti=%q", uid, gotJTI)
	}

	if _, _, err := ParseToken("not.a.token"); err == nil {
		t.Fatalf("malformed token must fail")
	}
	if _, _, err := ParseToken(signToken(t, "0", uuid.NewString())); err == nil {
		t.Fatalf("zero subject must fail")
	}
	if _, _, err := ParseToken(signToken(t, "abc", uuid.NewString())); err == nil {
		t.Fatalf("non-numeric subject must fail")
	}
}

func TestParseTokenRejectsRevoked(t *testing.T) {
	jti := uuid.NewString()
	token := signToken(t, "42", jti)
	if _, _, err := ParseToken(token); err != nil {
		t.Fatalf("parse before revocation: %v", err)
	}

	tokenstore.RevokeToken(jti)
	if _, _, err := ParseToken(token); err == nil {
		t.Fatalf("revoked token must fail")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})

	get := func(authz string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		r.ServeHTTP(w, req)
		return w
	}

	if w := get(""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: got %d", w.Code)
	}
	if w := get("Basic abc"); w.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: got %d", w.Code)
	}
	if w := get("Bearer bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: got %d", w.Code)
	}
	if w := get("Bearer " + signToken(t, "42", uuid.NewString())); w.Code != http.StatusOK {
		t.Fatalf("valid token: got %d body=%s", w.Code, w.Body.String())
	}
}
