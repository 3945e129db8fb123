package controllers

import (
	"net/http"

	"slashchat/middleware"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
)

// CreateChat starts a direct or group chat. Creating a direct chat that
// already exists returns the existing one.
func CreateChat(chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body struct {
			MemberIDs []uint `json:"member_ids"`
			Name      string `json:"name"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		chat, created, err := chats.Create(uid, body.MemberIDs, body.Name)
		if err != nil {
			fail(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{"chat_id": chat.ID, "kind": chat.Kind})
	}
}

func ListChats(chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		summaries, err := chats.List(uid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}

func GetChat(chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		detail, err := chats.Get(c.Param("chat_id"), uid)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// DeleteChat deletes the chat outright (direct chats, group admins) or just
// removes the caller's membership (group members).
func DeleteChat(chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)
		deleted, err := chats.Delete(c.Param("chat_id"), uid)
		if err != nil {
			fail(c, err)
			return
		}
		if deleted {
			c.JSON(http.StatusOK, gin.H{"msg": "chat deleted"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "left chat"})
	}
}

// UpdateChatFlags mutates the caller's own pinned/muted membership flags.
func UpdateChatFlags(chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.UserID(c)

		var body struct {
			Pinned *bool `json:"pinned"`
			Muted  *bool `json:"muted"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}

		if err := chats.SetFlags(c.Param("chat_id"), uid, body.Pinned, body.Muted); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "chat updated"})
	}
}
