package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to TEST_REDIS_ADDR and skips when it is unset or
// unreachable.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisSessionLifecycle(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	repo := NewRedisSessionRepository(client, logger.Nop())
	user := uuid.New()
	first, second := "test_"+uuid.NewString(), "test_"+uuid.NewString()
	t.Cleanup(func() {
		client.Del(ctx, SessionTokenPrefix+first, SessionTokenPrefix+second, SessionUserPrefix+user.String())
	})

	expires := time.Now().Add(time.Hour)
	active, err := repo.Acquire(ctx, &domain.Session{Token: first, UserID: user, ExpiresAt: expires})
	require.NoError(t, err)
	assert.Equal(t, first, active.Token)

	session, err := repo.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, user, session.UserID)
	assert.WithinDuration(t, expires, session.ExpiresAt, 5*time.Second)

	active, err = repo.Acquire(ctx, &domain.Session{Token: second, UserID: user, ExpiresAt: expires})
	require.NoError(t, err)
	assert.Equal(t, first, active.Token)
	_, err = repo.Resolve(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	active, err = repo.ActiveFor(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, first, active.Token)

	require.NoError(t, repo.Revoke(ctx, first))
	_, err = repo.Resolve(ctx, first)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, int64(0), client.Exists(ctx, SessionUserPrefix+user.String()).Val())

	active, err = repo.ActiveFor(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRedisSessionConcurrentAcquire(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	repo := NewRedisSessionRepository(client, logger.Nop())
	user := uuid.New()
	expires := time.Now().Add(time.Hour)

	const logins = 8
	candidates := make([]string, logins)
	for i := range candidates {
		candidates[i] = "test_" + uuid.NewString()
	}
	t.Cleanup(func() {
		keys := []string{SessionUserPrefix + user.String()}
		for _, token := range candidates {
			keys = append(keys, SessionTokenPrefix+token)
		}
		client.Del(ctx, keys...)
	})

	tokens := make([]string, logins)
	var wg sync.WaitGroup
	for i := range logins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := repo.Acquire(ctx, &domain.Session{Token: candidates[i], UserID: user, ExpiresAt: expires})
			assert.NoError(t, err)
			if session != nil {
				tokens[i] = session.Token
			}
		}()
	}
	wg.Wait()

	alive := 0
	for i, token := range tokens {
		assert.Equal(t, tokens[0], token)
		if client.Exists(ctx, SessionTokenPrefix+candidates[i]).Val() == 1 {
			alive++
		}
	}
	assert.Equal(t, 1, alive)
}

func TestRedisRateLimitIncrement(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()
	repo := NewRateLimitRepository(client, logger.Nop())
	key := "test_" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, RateLimitPrefix+key) })

	count, ttl, err := repo.Increment(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.LessOrEqual(t, ttl, time.Minute)

	count, _, err = repo.Increment(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
