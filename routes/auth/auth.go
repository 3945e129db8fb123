package auth

import (
	"slashchat/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterPublic(r *gin.Engine, db *gorm.DB) {
	r.POST("/auth/register", controllers.Register(db))
	r.POST("/auth/login", controllers.Login(db))
}

func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/auth/logout", controllers.Logout())
}
