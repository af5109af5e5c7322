package repository

import (
	"context"
	"sync"
	"time"

	"direct_messenger/internal/domain"

	"github.com/google/uuid"
)

// conversationLog is the ordered message sequence of one conversation.
// Its lock serializes appends to that conversation only.
type conversationLog struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

type memoryMessageRepository struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]*conversationLog
}

func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{logs: make(map[uuid.UUID]*conversationLog)}
}

func (r *memoryMessageRepository) lookup(conversationID uuid.UUID) *conversationLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logs[conversationID]
}

func (r *memoryMessageRepository) logFor(conversationID uuid.UUID) *conversationLog {
	if lg := r.lookup(conversationID); lg != nil {
		return lg
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	lg, ok := r.logs[conversationID]
	if !ok {
		lg = &conversationLog{}
		r.logs[conversationID] = lg
	}
	return lg
}

func (r *memoryMessageRepository) Append(_ context.Context, msg *domain.Message) error {
	lg := r.logFor(msg.ConversationID)

	lg.mu.Lock()
	defer lg.mu.Unlock()

	var last *time.Time
	if n := len(lg.messages); n > 0 {
		last = &lg.messages[n-1].CreatedAt
	}
	msg.CreatedAt = nextTimestamp(last, msg.CreatedAt)
	msg.Seq = int64(len(lg.messages) + 1)

	stored := *msg
	lg.messages = append(lg.messages, &stored)
	return nil
}

func (r *memoryMessageRepository) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	lg := r.lookup(conversationID)
	if lg == nil {
		return nil, nil
	}

	lg.mu.RLock()
	defer lg.mu.RUnlock()

	// Append keeps the slice sorted by (CreatedAt, Seq).
	messages := make([]*domain.Message, len(lg.messages))
	for i, msg := range lg.messages {
		clone := *msg
		messages[i] = &clone
	}
	return messages, nil
}

func (r *memoryMessageRepository) Last(_ context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	lg := r.lookup(conversationID)
	if lg == nil {
		return nil, nil
	}

	lg.mu.RLock()
	defer lg.mu.RUnlock()

	if len(lg.messages) == 0 {
		return nil, nil
	}
	clone := *lg.messages[len(lg.messages)-1]
	return &clone, nil
}

func (r *memoryMessageRepository) LastByConversations(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]*domain.Message, error) {
	last := make(map[uuid.UUID]*domain.Message, len(conversationIDs))
	for _, id := range conversationIDs {
		msg, err := r.Last(ctx, id)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			last[id] = msg
		}
	}
	return last, nil
}
