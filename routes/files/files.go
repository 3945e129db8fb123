package files

import (
	"slashchat/controllers"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
)

func Register(r *gin.Engine, files *services.FileStore) {
	r.GET("/files/:file_id", controllers.GetFile(files))
}
