//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepository is the token table. Lookups are exact: a token is never
// decoded, only matched. A user holds at most one active token.
type SessionRepository interface {
	// ActiveFor returns the unexpired session of userID, or nil when there is none.
	ActiveFor(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	// Acquire stores session unless its user already holds an unexpired token.
	// It returns whichever session is active afterwards.
	Acquire(ctx context.Context, session *domain.Session) (*domain.Session, error)
	// Resolve fails with ErrUnauthenticated for unknown or expired tokens.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
}

const (
	SessionTokenPrefix = "session:token:"
	SessionUserPrefix  = "session:user:"
)

const acquireRetries = 5

// sessionReader is satisfied by both *redis.Client and *redis.Tx.
type sessionReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

type redisSessionRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRedisSessionRepository(redis *redis.Client, log logger.Logger) SessionRepository {
	return &redisSessionRepository{redis: redis, log: log}
}

func (r *redisSessionRepository) ActiveFor(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	session, err := r.activeFor(ctx, r.redis, userID)
	if err != nil {
		r.log.Error("Failed to read active session", "error", err, "user_id", userID)
		return nil, err
	}
	return session, nil
}

func (r *redisSessionRepository) activeFor(ctx context.Context, cmd sessionReader, userID uuid.UUID) (*domain.Session, error) {
	token, err := cmd.Get(ctx, SessionUserPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pttl, err := cmd.PTTL(ctx, SessionTokenPrefix+token).Result()
	if err != nil {
		return nil, err
	}
	// -2: ключа токена уже нет
	if pttl <= 0 {
		return nil, nil
	}
	return &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(pttl),
	}, nil
}

func (r *redisSessionRepository) Acquire(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil, fmt.Errorf("session for %s already expired", session.UserID)
	}
	userKey := SessionUserPrefix + session.UserID.String()

	var active *domain.Session
	acquire := func(tx *redis.Tx) error {
		current, err := r.activeFor(ctx, tx, session.UserID)
		if err != nil {
			return err
		}
		if current != nil {
			active = current
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, SessionTokenPrefix+session.Token, session.UserID.String(), ttl)
			pipe.Set(ctx, userKey, session.Token, ttl)
			return nil
		})
		if err == nil {
			active = session
		}
		return err
	}

	for range acquireRetries {
		err := r.redis.Watch(ctx, acquire, userKey)
		if err == nil {
			return active, nil
		}
		// Параллельный вход того же пользователя, перечитываем
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		r.log.Error("Failed to store session", "error", err, "user_id", session.UserID)
		return nil, err
	}
	return nil, fmt.Errorf("store session for %s: too many concurrent logins", session.UserID)
}

func (r *redisSessionRepository) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	key := SessionTokenPrefix + token

	pipe := r.redis.Pipeline()
	get := pipe.Get(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrUnauthenticated
		}
		r.log.Error("Failed to resolve session", "error", err)
		return nil, err
	}

	userID, err := uuid.Parse(get.Val())
	if err != nil {
		r.log.Warn("Session holds malformed user id", "value", get.Val())
		return nil, apperrors.ErrUnauthenticated
	}

	return &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(pttl.Val()),
	}, nil
}

func (r *redisSessionRepository) Revoke(ctx context.Context, token string) error {
	key := SessionTokenPrefix + token
	userID, err := r.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		r.log.Error("Failed to read session", "error", err)
		return err
	}

	userKey := SessionUserPrefix + userID
	current, err := r.redis.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if current == token {
			pipe.Del(ctx, userKey)
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to revoke session", "error", err)
		return err
	}
	return nil
}
