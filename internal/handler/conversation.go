package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

type ConversationHandler struct {
	conversationService service.ConversationService
	chatService         service.ChatService
	log                 logger.Logger
}

func NewConversationHandler(conversationService service.ConversationService, chatService service.ChatService, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		chatService:         chatService,
		log:                 log,
	}
}

// Create возвращает существующую переписку пары или создает новую
func (h *ConversationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	conv, err := h.conversationService.GetOrCreate(c.Request.Context(), userID, req.participantID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.conversationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	conversationID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	messages, err := h.chatService.GetMessages(c.Request.Context(), conversationID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	conversationID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SendMessageRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), service.SendMessageInput{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        req.Content,
		MessageType:    req.MessageType,
		Metadata:       req.Metadata,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, message)
}
