package repository

import (
	"context"
	"fmt"
	"sync"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"

	"github.com/google/uuid"
)

// memoryConversationRepository holds one write lock across the pair lookup
// and the insert, which is what keeps a pair to a single conversation.
type memoryConversationRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Conversation
	byPair map[string]uuid.UUID
	byUser map[uuid.UUID][]uuid.UUID
}

func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{
		byID:   make(map[uuid.UUID]*domain.Conversation),
		byPair: make(map[string]uuid.UUID),
		byUser: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memoryConversationRepository) FindOrCreate(_ context.Context, candidate *domain.Conversation) (*domain.Conversation, bool, error) {
	key := candidate.PairKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byPair[key]; ok {
		conv := *r.byID[id]
		return &conv, false, nil
	}

	stored := *candidate
	r.byID[stored.ID] = &stored
	r.byPair[key] = stored.ID
	for _, userID := range stored.Participants {
		r.byUser[userID] = append(r.byUser[userID], stored.ID)
	}

	conv := stored
	return &conv, true, nil
}

func (r *memoryConversationRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, apperrors.ErrNotFound)
	}
	clone := *conv
	return &clone, nil
}

func (r *memoryConversationRepository) ListForUser(_ context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	convs := make([]*domain.Conversation, 0, len(ids))
	for _, id := range ids {
		clone := *r.byID[id]
		convs = append(convs, &clone)
	}
	return convs, nil
}
