package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"slashchat/middleware"
	"slashchat/models"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SearchUsers powers the "start a chat" flow: name substring match,
// excluding the caller, paginated.
func SearchUsers(db *gorm.DB, files *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		q := strings.ToLower(strings.TrimSpace(c.Query("q")))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "5"))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 50 {
			pageSize = 5
		}

		var users []models.User
		if err := db.Where("LOWER(name) LIKE ? AND id <> ?", "%"+q+"%", uid).
			Limit(pageSize).Offset((page - 1) * pageSize).
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		result := make([]gin.H, 0, len(users))
		for _, u := range users {
			result = append(result, gin.H{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"image": files.URL(u.AvatarFileID),
			})
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetUser returns public display info for one user.
func GetUser(db *gorm.DB, files *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("user_id"))

		var u models.User
		if err := db.First(&u, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":    u.ID,
			"name":  u.Name,
			"image": files.URL(u.AvatarFileID),
			"bio":   u.Bio,
		})
	}
}
