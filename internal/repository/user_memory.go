package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"

	"github.com/google/uuid"
)

// memoryUserRepository indexes users by id, email and username so every
// uniqueness check is a map lookup. order keeps registration order.
type memoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domain.User
	byEmail    map[string]uuid.UUID
	byUsername map[string]uuid.UUID
	order      []uuid.UUID
	seq        int64
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID:       make(map[uuid.UUID]*domain.User),
		byEmail:    make(map[string]uuid.UUID),
		byUsername: make(map[string]uuid.UUID),
	}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	if u.AvatarURL != nil {
		v := *u.AvatarURL
		clone.AvatarURL = &v
	}
	if u.Bio != nil {
		v := *u.Bio
		clone.Bio = &v
	}
	if u.LastSeenAt != nil {
		v := *u.LastSeenAt
		clone.LastSeenAt = &v
	}
	return &clone
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("create user: %w", apperrors.ErrDuplicateIdentity)
	}
	if _, taken := r.byUsername[user.Username]; taken {
		return fmt.Errorf("create user: %w", apperrors.ErrDuplicateIdentity)
	}
	if _, taken := r.byID[user.ID]; taken {
		return fmt.Errorf("create user: %w", apperrors.ErrDuplicateIdentity)
	}

	r.seq++
	user.Seq = r.seq
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID
	r.byUsername[user.Username] = user.ID
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[identifier]
	if !ok {
		id, ok = r.byUsername[identifier]
	}
	if !ok {
		return nil, fmt.Errorf("user %q: %w", identifier, apperrors.ErrNotFound)
	}
	return cloneUser(r.byID[id]), nil
}

func (r *memoryUserRepository) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[uuid.UUID]*domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.byID[id]; ok {
			users[id] = cloneUser(user)
		}
	}
	return users, nil
}

func (r *memoryUserRepository) ListExcept(_ context.Context, excludeID uuid.UUID, search string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []*domain.User
	for _, id := range r.order {
		user := r.byID[id]
		if id == excludeID || !user.Matches(search) {
			continue
		}
		users = append(users, cloneUser(user))
	}
	return users, nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, apperrors.ErrNotFound)
	}
	updated := cloneUser(stored)
	updated.DisplayName = user.DisplayName
	updated.Bio = user.Bio
	updated.AvatarURL = user.AvatarURL
	r.byID[user.ID] = cloneUser(updated)
	return nil
}

func (r *memoryUserRepository) SetOnline(_ context.Context, id uuid.UUID, online bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
	}
	updated := cloneUser(stored)
	updated.IsOnline = online
	if !online {
		seen := at
		updated.LastSeenAt = &seen
	}
	r.byID[id] = updated
	return nil
}

func (r *memoryUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *memoryUserRepository) Stats(_ context.Context) (*domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.UserStats{Total: len(r.byID)}
	for _, user := range r.byID {
		if user.IsOnline {
			stats.Online++
		}
	}
	return stats, nil
}
