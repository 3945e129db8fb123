package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"slashchat/middleware"
	"slashchat/pkg/realtime"
	"slashchat/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

const (
	wsReadLimit     = 1 << 20 // 1MB
	wsReadDeadline  = 60 * time.Second
	wsWriteDeadline = 10 * time.Second
)

// wsClient wraps a gorilla connection as a registry Conn. gorilla allows one
// concurrent writer, so Send serializes writes under a mutex.
type wsClient struct {
	userID uint
	mu     sync.Mutex
	conn   *websocket.Conn
}

func (c *wsClient) UserID() uint { return c.userID }

func (c *wsClient) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// ChatWS is the live connection endpoint. On open, the authenticated user's
// connection is registered and subscribed to every chat they belong to; on
// close it is deregistered from every index. The socket itself only carries
// a ping/pong liveness exchange from the client side; all business events
// flow server-to-client.
//
// Protocol:
//
//	connect: GET /ws?token=JWT
//	<- {"type":"connected"}
//	-> "ping"  /  <- "pong"
//	<- {"type":"new_message","chatId":...,"message":{...}}
//	<- {"type":"chat_deleted","chatId":...}
func ChatWS(reg *realtime.Registry, chats *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		uid, _, err := middleware.ParseToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		chatIDs, err := chats.ChatIDsFor(uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		})

		client := &wsClient{userID: uid, conn: conn}
		reg.Register(client)
		for _, chatID := range chatIDs {
			reg.Subscribe(chatID, client)
		}
		// transport close always triggers removal: no dangling entries
		defer reg.Deregister(client)

		if payload, err := json.Marshal(realtime.ConnectedEvent()); err == nil {
			_ = client.Send(payload)
		}

		for {
			if err := conn.SetReadDeadline(time.Now().Add(wsReadDeadline)); err != nil {
				return
			}
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("[ws] read error for user %d: %v", uid, err)
				}
				return
			}
			if mt != websocket.TextMessage {
				continue
			}
			// client-level liveness probe, no business payload
			if strings.TrimSpace(string(msg)) == "ping" {
				if err := client.Send([]byte("pong")); err != nil {
					return
				}
			}
		}
	}
}
