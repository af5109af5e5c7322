package handler

import (
	"net/http"

	"direct_messenger/internal/service"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService service.ChatService
	viewService service.ViewService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, viewService service.ViewService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		viewService: viewService,
		log:         log,
	}
}

type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	RecipientID    string `json:"recipientId"`
	Content        string `json:"content"`
}

func (h *ChatHandler) Conversations(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	summaries, err := h.viewService.SummariesFor(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	conversationID, err := parseID(c.Param("id"), "conversation id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	messages, err := h.viewService.MessagesFor(c.Request.Context(), userID, conversationID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SendMessageRequest
	bindJSON(c, &req, h.log)

	input := service.SendMessageInput{Content: req.Content}
	if req.ConversationID != "" {
		id, err := parseID(req.ConversationID, "conversationId")
		if err != nil {
			_ = c.Error(err)
			return
		}
		input.ConversationID = &id
	}
	if req.RecipientID != "" {
		id, err := parseID(req.RecipientID, "recipientId")
		if err != nil {
			_ = c.Error(err)
			return
		}
		input.RecipientID = &id
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), userID, input)
	if err != nil {
		h.log.Warn("Send message failed", "error", err, "user_id", userID)
		_ = c.Error(err)
		return
	}

	h.log.Debug("Message sent", "message_id", msg.ID, "conversation_id", msg.ConversationID)
	c.JSON(http.StatusCreated, msg)
}
