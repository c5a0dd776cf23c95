package handlers

import (
	"net/http"

	"supportdesk_backend/internal/middleware"
	"supportdesk_backend/internal/models"
	"supportdesk_backend/internal/services"
	"supportdesk_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("", h.SendMessage)
		messages.POST("/read-all", h.ReadAll)
		messages.GET("/unread-counts", h.UnreadCounts)
		messages.GET("/:counterpartyEmail", h.GetConversation)
	}

	// Админский срез: все сообщения с участием админской стороны
	inbox := r.Group("/messages")
	inbox.Use(middleware.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	{
		inbox.GET("", h.GetInbox)
	}
}

// SendMessage: Validated -> Persisted -> Broadcast-attempted.
// Ошибка валидации не оставляет частичной записи; ошибка push
// не видна отправителю - история в store авторитетна.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	message, err := h.chatService.SendMessage(principal, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	counterparty := c.Param("counterpartyEmail")

	messages, err := h.chatService.GetConversation(principal, counterparty)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) GetInbox(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	messages, err := h.chatService.GetAdminInbox(principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// ReadAll помечает прочитанным либо диалог с counterparty из тела,
// либо (без тела) все входящие principal-а.
func (h *ChatHandler) ReadAll(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReadAllRequest
	if c.Request.ContentLength > 0 {
		if !h.BindAndValidateJSON(c, &req) {
			return
		}
	}

	var modified int64
	var err error
	if req.CounterpartyEmail != "" {
		modified, err = h.chatService.MarkConversationRead(principal, req.CounterpartyEmail)
	} else {
		modified, err = h.chatService.MarkAllRead(principal)
	}
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReadAllResponse{Modified: modified})
}

func (h *ChatHandler) UnreadCounts(c *gin.Context) {
	principal, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	counts, err := h.chatService.UnreadCounts(principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
