package ws

import (
	"net/http"

	"supportdesk_backend/internal/logger"
	"supportdesk_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub        *Hub
	adminEmail string
	sendBuffer int
	upgrader   websocket.Upgrader
}

func NewWebSocketHandler(hub *Hub, adminEmail string, readBuffer, writeBuffer, sendBuffer int) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		adminEmail: adminEmail,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true // продакшн: проверка origin
			},
		},
	}
}

// ServeWS апгрейдит соединение и вступает в комнаты principal-а.
// Identity и роль уже положены в контекст AuthMiddleware.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	identityVal, exists := c.Get("identity")
	identity, _ := identityVal.(string)
	if !exists || identity == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	role := models.RoleClient
	if roleVal, ok := c.Get("role"); ok {
		if r, ok := roleVal.(models.Role); ok {
			role = r
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade error", "error", err)
		return
	}

	client := newClient(h.hub, conn, identity, role, h.sendBuffer)

	// Комната по собственной identity; админ дополнительно состоит
	// в фиксированной админской комнате.
	h.hub.Join(client, client.Identity)
	if client.Role == models.RoleAdmin && client.Identity != h.adminEmail {
		h.hub.Join(client, h.adminEmail)
	}

	go client.readPump()
	go client.writePump()
}
