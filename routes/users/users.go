package users

import (
	"slashchat/controllers"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Register(g *gin.RouterGroup, db *gorm.DB, files *services.FileStore) {
	g.GET("/users/search", controllers.SearchUsers(db, files))
	g.GET("/users/:user_id", controllers.GetUser(db, files))
}
