package devices

import (
	"slashchat/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/devices", controllers.RegisterDevice(db))
}
