package profile

import (
	"slashchat/controllers"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Register(g *gin.RouterGroup, db *gorm.DB, files *services.FileStore, messages *services.MessageService) {
	g.GET("/profile", controllers.Profile(db, files, messages))
	g.PUT("/profile", controllers.Profile(db, files, messages))
	g.POST("/profile/avatar-token", controllers.AvatarUploadToken(files))
	g.POST("/profile/avatar", controllers.UploadAvatar(db, files, messages))
}
