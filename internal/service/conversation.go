package service

import (
	"context"
	"fmt"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/metrics"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
)

// ConversationService is the registry of two-party conversations. A pair of
// users never has more than one.
type ConversationService interface {
	FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error)
	ConversationsFor(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	Get(ctx context.Context, conversationID uuid.UUID) (*domain.Conversation, error)
}

type conversationService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	now      Clock
	log      logger.Logger
}

func NewConversationService(convRepo repository.ConversationRepository, userRepo repository.UserRepository, now Clock, log logger.Logger) ConversationService {
	return &conversationService{
		convRepo: convRepo,
		userRepo: userRepo,
		now:      now,
		log:      log,
	}
}

func (s *conversationService) FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (*domain.Conversation, error) {
	if userA == userB {
		return nil, apperrors.ErrInvalidParticipants
	}

	users, err := s.userRepo.GetByIDs(ctx, []uuid.UUID{userA, userB})
	if err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{userA, userB} {
		if _, ok := users[id]; !ok {
			return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
		}
	}

	conv, created, err := s.convRepo.FindOrCreate(ctx, domain.NewConversation(userA, userB, s.now()))
	if err != nil {
		s.log.Error("Failed to find or create conversation", "error", err, "user_a", userA, "user_b", userB)
		return nil, err
	}
	if created {
		metrics.ConversationsCreated.Inc()
		s.log.Info("Conversation created", "conversation_id", conv.ID)
	}
	return conv, nil
}

func (s *conversationService) ConversationsFor(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return s.convRepo.ListForUser(ctx, userID)
}

func (s *conversationService) Get(ctx context.Context, conversationID uuid.UUID) (*domain.Conversation, error) {
	return s.convRepo.GetByID(ctx, conversationID)
}
