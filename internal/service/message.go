package service

import (
	"context"
	"strings"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/metrics"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
)

// MessageService is the append-only message log.
type MessageService interface {
	Append(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*domain.Message, error)
	ListFor(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error)
	// LastMessage returns nil when the conversation has no messages.
	LastMessage(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error)
}

type messageService struct {
	messageRepo   repository.MessageRepository
	conversations ConversationService
	now           Clock
	log           logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, conversations ConversationService, now Clock, log logger.Logger) MessageService {
	return &messageService{
		messageRepo:   messageRepo,
		conversations: conversations,
		now:           now,
		log:           log,
	}
}

func (s *messageService) Append(ctx context.Context, conversationID, senderID uuid.UUID, content string) (msg *domain.Message, err error) {
	defer func() {
		if err != nil {
			metrics.MessagesTotal.WithLabelValues(metrics.MessageRejected).Inc()
		}
	}()

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, apperrors.ErrInvalidSender
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrEmptyContent
	}

	msg = &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		s.log.Error("Failed to append message", "error", err, "conversation_id", conversationID)
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues(metrics.MessageSent).Inc()
	return msg, nil
}

func (s *messageService) ListFor(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	return s.messageRepo.ListByConversation(ctx, conversationID)
}

func (s *messageService) LastMessage(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	return s.messageRepo.Last(ctx, conversationID)
}
