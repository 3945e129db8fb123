package chat

import (
	"slashchat/controllers"
	"slashchat/middleware"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register registers chat and message routes (protected)
func Register(g *gin.RouterGroup, db *gorm.DB, chats *services.ChatService, messages *services.MessageService) {
	// Basic rate limiting on the write endpoints
	g.POST("/chats", middleware.RateLimit(), controllers.CreateChat(chats))
	g.GET("/chats", controllers.ListChats(chats))
	g.GET("/chats/:chat_id", controllers.GetChat(chats))
	g.PATCH("/chats/:chat_id", controllers.UpdateChatFlags(chats))
	g.DELETE("/chats/:chat_id", controllers.DeleteChat(chats))

	g.POST("/chats/:chat_id/messages", middleware.RateLimit(), controllers.CreateMessage(messages))
	g.GET("/chats/:chat_id/messages", controllers.ListMessages(db, messages))
}
