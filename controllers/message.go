package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"slashchat/middleware"
	"slashchat/models"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateMessage accepts a text/location message as JSON, or an image message
// as multipart form data ("image" file field).
func CreateMessage(messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		chatID := c.Param("chat_id")

		var in services.CreateMessageInput
		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			in.Type = c.DefaultPostForm("type", models.MessageTypeImage)
			file, header, err := c.Request.FormFile("image")
			if err == nil {
				defer file.Close()
				data, rerr := io.ReadAll(io.LimitReader(file, services.MaxObjectSize+1))
				if rerr != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to read file"})
					return
				}
				in.Image = data
				in.ImageName = header.Filename
			}
		} else {
			var body struct {
				Type     string          `json:"type"`
				Content  string          `json:"content"`
				Location json.RawMessage `json:"location"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
				return
			}
			in.Type = body.Type
			in.Content = body.Content
			in.Location = body.Location
		}
		if in.Type == "" {
			in.Type = models.MessageTypeText
		}

		view, err := messages.Create(chatID, uid, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

// ListMessages returns a chat's history, newest first, with denormalized
// sender identity and pagination totals.
func ListMessages(db *gorm.DB, messages *services.MessageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		chatID := c.Param("chat_id")

		var member models.ChatMember
		if err := db.Where("chat_id = ? AND user_id = ?", chatID, uid).First(&member).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		var rows []models.Message
		if err := db.Preload("Attachments").Where("chat_id = ?", chatID).
			Order("created_at DESC").
			Limit(pageSize).Offset((page - 1) * pageSize).
			Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		var total int64
		db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&total)

		result := make([]gin.H, 0, len(rows))
		for i := range rows {
			view := messages.View(&rows[i])
			result = append(result, gin.H{
				"id":          view.ID,
				"type":        view.Type,
				"content":     view.Content,
				"senderId":    view.SenderID,
				"createdAt":   view.CreatedAt,
				"name":        view.Name,
				"image":       view.Image,
				"attachments": view.Attachments,
				"isMe":        view.SenderID == uid,
			})
		}

		totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
		c.JSON(http.StatusOK, gin.H{
			"messages": result,
			"pagination": gin.H{
				"total":      total,
				"page":       page,
				"pageSize":   pageSize,
				"totalPages": totalPages,
			},
		})
	}
}
