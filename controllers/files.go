package controllers

import (
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
)

// GetFile streams a stored object by id.
func GetFile(files *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := files.Lookup(c.Param("file_id"))
		if err != nil {
			fail(c, err)
			return
		}
		if f.ContentType != "" {
			c.Header("Content-Type", f.ContentType)
		}
		c.File(f.Path)
	}
}
