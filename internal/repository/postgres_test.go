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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TEST_DATABASE_DSN, applies the schema and skips
// when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres not available: %v", err)
	}
	require.NoError(t, Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func createTestUser(t *testing.T, repo UserRepository, name string) *domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := newUser(name+"_"+suffix+"@test.io", name+"_"+suffix, name)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostgresUserRepository(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool, logger.Nop())

	alice := createTestUser(t, repo, "alice")
	assert.NotZero(t, alice.Seq)

	dup := newUser(alice.Email, "someone_"+uuid.NewString()[:8], "dup")
	assert.ErrorIs(t, repo.Create(ctx, dup), apperrors.ErrDuplicateIdentity)

	got, err := repo.GetByIdentifier(ctx, alice.Username)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	require.NoError(t, repo.SetOnline(ctx, alice.ID, false, time.Now()))
	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastSeenAt)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgresConversationFindOrCreateIsUniquePerPair(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool, logger.Nop())
	repo := NewConversationRepository(pool, logger.Nop())
	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	const workers = 8
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, _, err := repo.FindOrCreate(ctx, domain.NewConversation(alice.ID, bob.ID, time.Now()))
			assert.NoError(t, err)
			if conv != nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	conv, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, conv.HasParticipant(alice.ID))
	assert.True(t, conv.HasParticipant(bob.ID))
}

func TestPostgresMessageAppendOrdering(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool, logger.Nop())
	convs := NewConversationRepository(pool, logger.Nop())
	repo := NewMessageRepository(pool, logger.Nop())
	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	conv, _, err := convs.FindOrCreate(ctx, domain.NewConversation(alice.ID, bob.ID, time.Now()))
	require.NoError(t, err)

	at := time.Now()
	for _, text := range []string{"one", "two"} {
		msg := &domain.Message{ID: uuid.New(), ConversationID: conv.ID, SenderID: alice.ID, Content: text, CreatedAt: at}
		require.NoError(t, repo.Append(ctx, msg))
	}

	messages, err := repo.ListByConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "one", messages[0].Content)
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))

	err = repo.Append(ctx, &domain.Message{ID: uuid.New(), ConversationID: uuid.New(), SenderID: alice.ID, Content: "x", CreatedAt: at})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
