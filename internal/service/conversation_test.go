package service

import (
	"context"
	"sync"
	"testing"

	apperrors "direct_messenger/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConversationService_FindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the same conversation in either order", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newTestServices(t)
		alice, bob := register(t, svc, "alice"), register(t, svc, "bob")

		first, err := svc.Conversation.FindOrCreate(ctx, alice.User.ID, bob.User.ID)
		req.NoError(err)
		second, err := svc.Conversation.FindOrCreate(ctx, bob.User.ID, alice.User.ID)
		req.NoError(err)
		req.Equal(first.ID, second.ID)

		convs, err := svc.Conversation.ConversationsFor(ctx, alice.User.ID)
		req.NoError(err)
		req.Len(convs, 1)
	})

	t.Run("should create a single conversation under concurrent calls", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newTestServices(t)
		alice, bob := register(t, svc, "alice"), register(t, svc, "bob")

		const callers = 20
		ids := make(chan uuid.UUID, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a, b := alice.User.ID, bob.User.ID
				if i%2 == 0 {
					a, b = b, a
				}
				conv, err := svc.Conversation.FindOrCreate(ctx, a, b)
				if err == nil {
					ids <- conv.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := map[uuid.UUID]bool{}
		for id := range ids {
			seen[id] = true
		}
		req.Len(seen, 1)

		convs, err := svc.Conversation.ConversationsFor(ctx, bob.User.ID)
		req.NoError(err)
		req.Len(convs, 1)
	})

	t.Run("should reject a conversation with oneself", func(t *testing.T) {
		svc, _ := newTestServices(t)
		alice := register(t, svc, "alice")
		_, err := svc.Conversation.FindOrCreate(ctx, alice.User.ID, alice.User.ID)
		require.ErrorIs(t, err, apperrors.ErrInvalidParticipants)
	})

	t.Run("should reject an unknown recipient", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newTestServices(t)
		alice := register(t, svc, "alice")

		_, err := svc.Conversation.FindOrCreate(ctx, alice.User.ID, uuid.New())
		req.ErrorIs(err, apperrors.ErrNotFound)

		convs, err := svc.Conversation.ConversationsFor(ctx, alice.User.ID)
		req.NoError(err)
		req.Empty(convs)
	})
}
