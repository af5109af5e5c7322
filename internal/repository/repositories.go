package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"direct_messenger/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Session      SessionRepository
	RateLimit    RateLimitRepository
}

// NewRepositories wires PostgreSQL and Redis backed stores. A nil pool or a
// nil client selects the in-process implementation for that side.
func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{}

	if db != nil {
		repos.User = NewUserRepository(db, log)
		repos.Conversation = NewConversationRepository(db, log)
		repos.Message = NewMessageRepository(db, log)
		log.Info("PostgreSQL repositories initialized")
	} else {
		repos.User = NewMemoryUserRepository()
		repos.Conversation = NewMemoryConversationRepository()
		repos.Message = NewMemoryMessageRepository()
		log.Warn("DATABASE_DSN is empty, using in-memory storage")
	}

	if redis != nil {
		repos.Session = NewRedisSessionRepository(redis, log)
		repos.RateLimit = NewRateLimitRepository(redis, log)
		log.Info("Redis repositories initialized")
	} else {
		repos.Session = NewMemorySessionRepository()
		repos.RateLimit = NewMemoryRateLimitRepository()
		log.Warn("REDIS_ADDR is empty, sessions and rate limits are process-local")
	}

	return repos
}

// NewMemoryRepositories is the fully in-process set used by tests and local runs.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		User:         NewMemoryUserRepository(),
		Conversation: NewMemoryConversationRepository(),
		Message:      NewMemoryMessageRepository(),
		Session:      NewMemorySessionRepository(),
		RateLimit:    NewMemoryRateLimitRepository(),
	}
}
