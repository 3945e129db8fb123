package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(uid uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/limited", func(c *gin.Context) {
		c.Set(ContextUserIDKey, uid)
		c.Next()
	}, RateLimit(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "ok"})
	})
	return r
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterCapacity(t *testing.T) {
	SetRateLimitConfig(time.Minute, 2)
	defer SetRateLimitConfig(10*time.Second, 5)
	r := rateLimitedRouter(101)

	for i := 0; i < 2; i++ {
		if w := post(r, "/limited"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}

	w := post(r, "/limited")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-capacity request: got %d, want 429", w.Code)
	}
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retry <= 0 {
		t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
}

func TestRateLimitIsPerUser(t *testing.T) {
	SetRateLimitConfig(time.Minute, 1)
	defer SetRateLimitConfig(10*time.Second, 5)

	first := rateLimitedRouter(201)
	second := rateLimitedRouter(202)

	if w := post(first, "/limited"); w.Code != http.StatusOK {
		t.Fatalf("first user: got %d", w.Code)
	}
	if w := post(first, "/limited"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first user second request: got %d, want 429", w.Code)
	}
	// an exhausted bucket for one user never throttles another
	if w := post(second, "/limited"); w.Code != http.StatusOK {
		t.Fatalf("second user: got %d, want 200", w.Code)
	}
}

func TestRateLimitRefills(t *testing.T) {
	SetRateLimitConfig(50*time.Millisecond, 1)
	defer SetRateLimitConfig(10*time.Second, 5)
	r := rateLimitedRouter(301)

	if w := post(r, "/limited"); w.Code != http.StatusOK {
		t.Fatalf("initial request: got %d", w.Code)
	}
	if w := post(r, "/limited"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("drained bucket: got %d, want 429", w.Code)
	}

	time.Sleep(60 * time.Millisecond)
	if w := post(r, "/limited"); w.Code != http.StatusOK {
		t.Fatalf("after refill window: got %d, want 200", w.Code)
	}
}
