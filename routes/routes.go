package routes

import (
	"net/http"

	"slashchat/middleware"
	"slashchat/pkg/realtime"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authRoutes "slashchat/routes/auth"
	chatRoutes "slashchat/routes/chat"
	devicesRoutes "slashchat/routes/devices"
	filesRoutes "slashchat/routes/files"
	profileRoutes "slashchat/routes/profile"
	usersRoutes "slashchat/routes/users"
	websocketRoutes "slashchat/routes/websocket"
)

// Deps carries the per-process component instances handed down to route
// registration: one registry, one broadcaster, one of each service.
type Deps struct {
	Registry *realtime.Registry
	Chats    *services.ChatService
	Messages *services.MessageService
	Files    *services.FileStore
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps *Deps) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "chat backend running"})
	})

	filesRoutes.Register(r, deps.Files)
	websocketRoutes.Register(r, deps.Registry, deps.Chats)
	authRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, db)
	profileRoutes.Register(protected, db, deps.Files, deps.Messages)
	usersRoutes.Register(protected, db, deps.Files)
	chatRoutes.Register(protected, db, deps.Chats, deps.Messages)
	devicesRoutes.Register(protected, db)
}
