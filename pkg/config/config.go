package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret string
	Port      string

	// DatabaseDSN selects mysql when set; sqlite file otherwise.
	DatabaseDSN string
	SQLitePath  string

	// Object storage for uploaded files.
	UploadBasePath  string
	UploadBaseURL   string
	UploadSecretKey string

	// Expo-compatible push endpoint. Empty disables push entirely.
	PushEndpoint       string
	PushTimeoutSeconds int

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	UserCacheTTLSeconds    int
	UserCacheMaxItems      int
)

// loadAppEnv loads .env for non-production environments only; production
// relies on the host environment.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	// .env is optional outside production (tests run without one)
	_ = godotenv.Load()
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		log.Fatal("environment variable APP_ENV must be 'staging' or 'production'")
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	DatabaseDSN = os.Getenv("DATABASE_DSN")
	SQLitePath = os.Getenv("SQLITE_PATH")
	if SQLitePath == "" {
		SQLitePath = "app.db"
	}

	UploadBasePath = os.Getenv("UPLOAD_BASE_PATH")
	if UploadBasePath == "" {
		UploadBasePath = "./uploads"
	}
	UploadBaseURL = os.Getenv("UPLOAD_BASE_URL")
	if UploadBaseURL == "" {
		UploadBaseURL = "http://127.0.0.1:" + Port + "/files"
	}
	UploadSecretKey = os.Getenv("UPLOAD_SECRET_KEY")
	if UploadSecretKey == "" {
		UploadSecretKey = "upload-signing-secret"
	}

	PushEndpoint = os.Getenv("PUSH_ENDPOINT")
	if PushEndpoint == "" && !IsProduction {
		PushEndpoint = "https://exp.host/--/api/v2/push/send"
	}
	PushTimeoutSeconds = atoiOr(os.Getenv("PUSH_TIMEOUT_SECONDS"), 10)

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserCacheTTLSeconds = atoiOr(os.Getenv("USER_CACHE_TTL_SECONDS"), 600)
	UserCacheMaxItems = atoiOr(os.Getenv("USER_CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] DatabaseDSNPresent=%v PushEndpointPresent=%v", DatabaseDSN != "", PushEndpoint != "")
	log.Printf("[config] RateLimit window=%ds capacity=%d userCacheTTL=%ds userCacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, UserCacheTTLSeconds, UserCacheMaxItems)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
