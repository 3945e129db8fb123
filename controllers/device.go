package controllers

import (
	"net/http"
	"strings"

	"slashchat/middleware"
	"slashchat/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterDevice stores a push token for the caller. Re-registering the same
// token is a no-op; tokens are never actively deleted.
func RegisterDevice(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body struct {
			PushToken string `json:"push_token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.PushToken) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "push_token is required"})
			return
		}

		device := models.Device{UserID: uid, PushToken: strings.TrimSpace(body.PushToken)}
		if err := db.Where("user_id = ? AND push_token = ?", device.UserID, device.PushToken).
			FirstOrCreate(&device).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to register device"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"msg": "device registered"})
	}
}
