package controllers

import (
	"io"
	"net/http"
	"strings"

	"slashchat/middleware"
	"slashchat/models"
	"slashchat/pkg/services"
	utils "slashchat/pkg/utills"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Profile(db *gorm.DB, files *services.FileStore, messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
			return
		}

		if c.Request.Method == http.MethodGet {
			c.JSON(http.StatusOK, gin.H{
				"id":       user.ID,
				"email":    user.Email,
				"username": user.Username,
				"name":     user.Name,
				"bio":      user.Bio,
				"image":    files.URL(user.AvatarFileID),
			})
			return
		}

		// PUT
		var body struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Name     string `json:"name"`
			Bio      string `json:"bio"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		newEmail := strings.TrimSpace(strings.ToLower(body.Email))
		if newEmail == "" {
			newEmail = user.Email
		}
		newUsername := strings.TrimSpace(body.Username)
		if newUsername == "" {
			newUsername = user.Username
		}
		if name := strings.TrimSpace(body.Name); name != "" {
			user.Name = name
		}
		if body.Bio != "" {
			user.Bio = body.Bio
		}

		// check email uniqueness
		if newEmail != user.Email {
			var t models.User
			if err := db.Where("email = ?", newEmail).First(&t).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"msg": "Email already exists"})
				return
			}
		}
		// check username uniqueness
		if newUsername != user.Username {
			var t models.User
			if err := db.Where("username = ?", newUsername).First(&t).Error; err == nil {
				c.JSON(http.StatusConflict, gin.H{"msg": "Username already exists"})
				return
			}
		}

		user.Email = newEmail
		user.Username = newUsername
		if body.Password != "" {
			if !utils.ValidPassword(body.Password) {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "New password must contain at least one letter and one number"})
				return
			}
			if err := user.SetPassword(body.Password); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to set password"})
				return
			}
		}
		if err := db.Save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update profile"})
			return
		}
		messages.InvalidateUser(user.ID)

		c.JSON(http.StatusOK, gin.H{"msg": "Profile updated successfully"})
	}
}

// AvatarUploadToken issues a short-lived signed token for one avatar upload.
func AvatarUploadToken(files *services.FileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		c.JSON(http.StatusOK, gin.H{"upload_token": files.GenerateUploadToken(uid)})
	}
}

// UploadAvatar stores a profile image (multipart "image" + "token" fields)
// and points the user's avatar at the new object.
func UploadAvatar(db *gorm.DB, files *services.FileStore, messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "image file is required"})
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarSize+1))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to read file"})
			return
		}

		fileID, err := files.SaveAvatar(uid, data, header.Filename, c.PostForm("token"))
		if err != nil {
			fail(c, err)
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", uid).Update("avatar_file_id", fileID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to update avatar"})
			return
		}
		messages.InvalidateUser(uid)

		c.JSON(http.StatusOK, gin.H{"file_id": fileID, "image": files.URL(fileID)})
	}
}
