package service

import (
	"direct_messenger/internal/config"
	"direct_messenger/internal/repository"
	"direct_messenger/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Conversation ConversationService
	Message      MessageService
	View         ViewService
	Chat         ChatService
	RateLimit    RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Services {
	return newServices(repos, cfg, SystemClock, log)
}

func newServices(repos *repository.Repositories, cfg *config.Config, now Clock, log logger.Logger) *Services {
	conversations := NewConversationService(repos.Conversation, repos.User, now, log)
	messages := NewMessageService(repos.Message, conversations, now, log)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.Session, cfg.Auth, now, log),
		User:         NewUserService(repos.User, log),
		Conversation: conversations,
		Message:      messages,
		View:         NewViewService(repos.User, repos.Message, conversations, messages, log),
		Chat:         NewChatService(conversations, messages, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, cfg.RateLimit, log),
	}
}
