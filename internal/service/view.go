package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ViewService builds read models from users, conversations and messages. It
// holds no state of its own.
type ViewService interface {
	// SummariesFor lists the caller's conversations, most recent activity first.
	SummariesFor(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error)
	// MessagesFor lists a conversation for one of its participants.
	MessagesFor(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.MessageView, error)
}

type viewService struct {
	userRepo      repository.UserRepository
	messageRepo   repository.MessageRepository
	conversations ConversationService
	messages      MessageService
	log           logger.Logger
}

func NewViewService(userRepo repository.UserRepository, messageRepo repository.MessageRepository, conversations ConversationService, messages MessageService, log logger.Logger) ViewService {
	return &viewService{
		userRepo:      userRepo,
		messageRepo:   messageRepo,
		conversations: conversations,
		messages:      messages,
		log:           log,
	}
}

func (s *viewService) SummariesFor(ctx context.Context, userID uuid.UUID) ([]domain.ConversationSummary, error) {
	convs, err := s.conversations.ConversationsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	others := lo.Map(convs, func(c *domain.Conversation, _ int) uuid.UUID {
		other, _ := c.OtherParticipant(userID)
		return other
	})
	users, err := s.userRepo.GetByIDs(ctx, lo.Uniq(others))
	if err != nil {
		return nil, err
	}

	ids := lo.Map(convs, func(c *domain.Conversation, _ int) uuid.UUID { return c.ID })
	last, err := s.messageRepo.LastByConversations(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ConversationSummary, 0, len(convs))
	for i, conv := range convs {
		other, ok := users[others[i]]
		if !ok {
			s.log.Warn("Conversation references unknown user", "conversation_id", conv.ID, "user_id", others[i])
			continue
		}
		summary := domain.ConversationSummary{
			ID:              conv.ID,
			OtherUser:       other.Summary(),
			LastMessageTime: conv.CreatedAt,
		}
		if msg, ok := last[conv.ID]; ok {
			summary.LastMessageText = msg.Content
			summary.LastMessageTime = msg.CreatedAt
		}
		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b domain.ConversationSummary) int {
		if c := b.LastMessageTime.Compare(a.LastMessageTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return summaries, nil
}

func (s *viewService) MessagesFor(ctx context.Context, userID, conversationID uuid.UUID) ([]domain.MessageView, error) {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	// Чужой диалог выглядит так же, как несуществующий
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, apperrors.ErrNotFound)
	}

	messages, err := s.messages.ListFor(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	senders, err := s.userRepo.GetByIDs(ctx, conv.Participants[:])
	if err != nil {
		return nil, err
	}

	return lo.Map(messages, func(m *domain.Message, _ int) domain.MessageView {
		view := domain.MessageView{Message: *m}
		if sender, ok := senders[m.SenderID]; ok {
			view.SenderName = sender.DisplayName
			view.SenderAvatar = sender.AvatarURL
		}
		return view
	}), nil
}
