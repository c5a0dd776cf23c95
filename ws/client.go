package ws

import (
	"encoding/json"
	"sync"

	"supportdesk_backend/internal/logger"
	"supportdesk_backend/internal/models"

	"github.com/gorilla/websocket"
)

// IncomingEvent - входящее сообщение live-канала
type IncomingEvent struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Client - одно живое соединение. Identity фиксируется при подключении
// из аутентифицированного principal и не меняется.
type Client struct {
	Identity string
	Role     models.Role

	conn *websocket.Conn
	Send chan Event
	hub  *Hub

	mu        sync.Mutex
	rooms     []string
	dead      bool
	sendOnce  sync.Once
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, identity string, role models.Role, sendBuffer int) *Client {
	return &Client{
		Identity: identity,
		Role:     role,
		conn:     conn,
		Send:     make(chan Event, sendBuffer),
		hub:      hub,
	}
}

func (c *Client) trackRoom(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, room := range c.rooms {
		if room == identity {
			return
		}
	}
	c.rooms = append(c.rooms, identity)
}

func (c *Client) roomList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.rooms...)
}

// trySend - неблокирующая отправка; false при переполненном буфере
func (c *Client) trySend(event Event) bool {
	select {
	case c.Send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() {
		c.mu.Lock()
		c.dead = true
		c.mu.Unlock()
		close(c.Send)
	})
}

// isDead сообщает, что Send уже закрыт и соединение нельзя
// регистрировать в комнатах заново
func (c *Client) isDead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dead
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.closeConn()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "identity", c.Identity, "error", err)
			}
			return
		}

		var event IncomingEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			logger.Debug("ws: malformed incoming event", "identity", c.Identity, "error", err)
			continue
		}

		c.handleEvent(event)
	}
}

func (c *Client) writePump() {
	defer c.closeConn()

	for event := range c.Send {
		if err := c.conn.WriteJSON(event); err != nil {
			logger.Debug("ws write error", "identity", c.Identity, "error", err)
			return
		}
	}
}

func (c *Client) handleEvent(event IncomingEvent) {
	switch event.Action {
	case "join":
		// Переподключение: клиент заново вступает в собственную комнату.
		// Чужие комнаты недоступны - identity взята из токена.
		c.hub.Join(c, c.Identity)
	default:
		logger.Debug("ws: unhandled action", "action", event.Action)
	}
}
