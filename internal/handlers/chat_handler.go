package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

type ChatHandler struct {
	BaseHandler
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService, logger utils.Logger, exposeErrors bool) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(logger, exposeErrors),
		chatService: chatService,
	}
}

// SendMessage stores a direct message from the caller
// @Summary Send message
// @Tags chat
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /chat/send [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "newMessage": msg})
}

// GetConversation returns both directions between the caller and :userId, oldest first
// @Summary Conversation
// @Tags chat
// @Produce json
// @Param userId path string true "Other user ID"
// @Success 200 {object} map[string]interface{}
// @Router /chat/{userId} [get]
func (h *ChatHandler) GetConversation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	messages, err := h.chatService.History(c.Request.Context(), actor, c.Param("userId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessages(c, messages)
}

// GetMyMessages returns every message the caller sent or received
// @Summary My messages
// @Tags chat
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /chat [get]
func (h *ChatHandler) GetMyMessages(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	messages, err := h.chatService.Mine(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessages(c, messages)
}

// GetAllMessages is the admin chat log
// @Summary All messages
// @Tags chat
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /chat/logs/all [get]
func (h *ChatHandler) GetAllMessages(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	messages, err := h.chatService.All(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessages(c, messages)
}

func respondMessages[T any](c *gin.Context, messages []T) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(messages), "messages": messages})
}
