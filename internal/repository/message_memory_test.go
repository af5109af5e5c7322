package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"direct_messenger/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTimestamp(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 1500, time.UTC)

	got := nextTimestamp(nil, base)
	assert.Equal(t, base.Truncate(time.Microsecond), got)

	last := got
	assert.Equal(t, last.Add(time.Microsecond), nextTimestamp(&last, base))
	assert.Equal(t, last.Add(time.Microsecond), nextTimestamp(&last, base.Add(-time.Hour)))

	later := base.Add(time.Second)
	assert.Equal(t, later.Truncate(time.Microsecond), nextTimestamp(&last, later))
}

func TestMemoryMessageAppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessageRepository()
	conv := uuid.New()
	at := time.Now()

	for _, text := range []string{"one", "two", "three"} {
		// Одинаковое время: порядок задаёт seq и сдвиг на микросекунду
		msg := &domain.Message{ID: uuid.New(), ConversationID: conv, SenderID: uuid.New(), Content: text, CreatedAt: at}
		require.NoError(t, repo.Append(ctx, msg))
	}

	messages, err := repo.ListByConversation(ctx, conv)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Content)
	assert.Equal(t, "three", messages[2].Content)
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i-1].CreatedAt.Before(messages[i].CreatedAt))
		assert.Equal(t, int64(i+1), messages[i].Seq)
	}

	last, err := repo.Last(ctx, conv)
	require.NoError(t, err)
	assert.Equal(t, "three", last.Content)
}

func TestMemoryMessageLastOfEmptyConversation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessageRepository()

	last, err := repo.Last(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, last)

	messages, err := repo.ListByConversation(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMemoryMessageConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessageRepository()
	conv := uuid.New()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := &domain.Message{ID: uuid.New(), ConversationID: conv, SenderID: uuid.New(), Content: "x", CreatedAt: time.Now()}
			assert.NoError(t, repo.Append(ctx, msg))
		}()
	}
	wg.Wait()

	messages, err := repo.ListByConversation(ctx, conv)
	require.NoError(t, err)
	require.Len(t, messages, writers)
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i-1].Before(messages[i]))
		assert.True(t, messages[i-1].CreatedAt.Before(messages[i].CreatedAt))
	}
}

func TestMemoryMessageLastByConversations(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryMessageRepository()
	withMessages, empty := uuid.New(), uuid.New()

	require.NoError(t, repo.Append(ctx, &domain.Message{ID: uuid.New(), ConversationID: withMessages, Content: "a", CreatedAt: time.Now()}))
	require.NoError(t, repo.Append(ctx, &domain.Message{ID: uuid.New(), ConversationID: withMessages, Content: "b", CreatedAt: time.Now()}))

	last, err := repo.LastByConversations(ctx, []uuid.UUID{withMessages, empty})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "b", last[withMessages].Content)
}
