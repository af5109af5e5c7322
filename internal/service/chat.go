package service

import (
	"context"
	"fmt"
	"strings"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
)

type ChatService interface {
	SendMessage(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error)
}

// SendMessageInput addresses a message either to an existing conversation or
// to a recipient. ConversationID wins when both are set.
type SendMessageInput struct {
	ConversationID *uuid.UUID
	RecipientID    *uuid.UUID
	Content        string
}

type chatService struct {
	conversations ConversationService
	messages      MessageService
	log           logger.Logger
}

func NewChatService(conversations ConversationService, messages MessageService, log logger.Logger) ChatService {
	return &chatService{
		conversations: conversations,
		messages:      messages,
		log:           log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, senderID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	// Пустое сообщение не должно создавать диалог
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.ErrEmptyContent
	}

	var conversationID uuid.UUID
	switch {
	case input.ConversationID != nil:
		conversationID = *input.ConversationID
	case input.RecipientID != nil:
		conv, err := s.conversations.FindOrCreate(ctx, senderID, *input.RecipientID)
		if err != nil {
			return nil, err
		}
		conversationID = conv.ID
	default:
		return nil, fmt.Errorf("%w: conversationId or recipientId is required", apperrors.ErrBadRequest)
	}

	return s.messages.Append(ctx, conversationID, senderID, input.Content)
}
