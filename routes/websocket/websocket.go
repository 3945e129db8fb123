package websocket

import (
	"slashchat/controllers"
	"slashchat/pkg/realtime"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, reg *realtime.Registry, chats *services.ChatService) {
	r.GET("/ws", controllers.ChatWS(reg, chats))
}
