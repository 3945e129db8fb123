package main

import (
	"log"
	"time"

	"slashchat/middleware"
	"slashchat/models"
	"slashchat/pkg/cache"
	"slashchat/pkg/config"
	"slashchat/pkg/realtime"
	"slashchat/pkg/services"
	"slashchat/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// config init via package init()

	// mysql when a DSN is configured, sqlite file otherwise
	var dialector gorm.Dialector
	if config.DatabaseDSN != "" {
		dialector = mysql.Open(config.DatabaseDSN)
	} else {
		dialector = sqlite.Open(config.SQLitePath)
	}
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// auto-migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.ChatMember{},
		&models.Message{},
		&models.Attachment{},
		&models.Device{},
		&models.File{},
	); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	// One registry per process, passed by reference everywhere it is needed.
	registry := realtime.NewRegistry()
	broadcaster := realtime.NewBroadcaster(registry)

	files := services.NewFileStore(db, config.UploadBasePath, config.UploadBaseURL, config.UploadSecretKey)
	userCache := cache.New(config.UserCacheMaxItems)
	pushTimeout := time.Duration(config.PushTimeoutSeconds) * time.Second
	push := services.NewExpoPush(config.PushEndpoint, pushTimeout)
	notifier := services.NewNotifier(db, push, pushTimeout)
	messages := services.NewMessageService(db, files, userCache,
		time.Duration(config.UserCacheTTLSeconds)*time.Second, broadcaster, notifier)
	chats := services.NewChatService(db, registry, broadcaster, messages)

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, &routes.Deps{
		Registry: registry,
		Chats:    chats,
		Messages: messages,
		Files:    files,
	})
	r.Run(":" + config.Port)
}
