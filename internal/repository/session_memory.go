package repository

import (
	"context"
	"sync"
	"time"

	"direct_messenger/internal/domain"
	apperrors "direct_messenger/pkg/errors"

	"github.com/google/uuid"
)

type memorySessionRepository struct {
	mu      sync.Mutex
	byToken map[string]domain.Session
	byUser  map[uuid.UUID]string
	now     func() time.Time
}

func NewMemorySessionRepository() SessionRepository {
	return newMemorySessionRepository(time.Now)
}

func newMemorySessionRepository(now func() time.Time) *memorySessionRepository {
	return &memorySessionRepository{
		byToken: make(map[string]domain.Session),
		byUser:  make(map[uuid.UUID]string),
		now:     now,
	}
}

func (r *memorySessionRepository) ActiveFor(_ context.Context, userID uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked(userID), nil
}

func (r *memorySessionRepository) Acquire(_ context.Context, session *domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if active := r.activeLocked(session.UserID); active != nil {
		return active, nil
	}
	r.byToken[session.Token] = *session
	r.byUser[session.UserID] = session.Token

	stored := *session
	return &stored, nil
}

func (r *memorySessionRepository) activeLocked(userID uuid.UUID) *domain.Session {
	token, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	session, ok := r.byToken[token]
	if !ok {
		delete(r.byUser, userID)
		return nil
	}
	if session.Expired(r.now()) {
		r.dropLocked(session)
		return nil
	}
	return &session
}

func (r *memorySessionRepository) Resolve(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.byToken[token]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	if session.Expired(r.now()) {
		r.dropLocked(session)
		return nil, apperrors.ErrUnauthenticated
	}
	return &session, nil
}

func (r *memorySessionRepository) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.byToken[token]; ok {
		r.dropLocked(session)
	}
	return nil
}

func (r *memorySessionRepository) dropLocked(session domain.Session) {
	delete(r.byToken, session.Token)
	if r.byUser[session.UserID] == session.Token {
		delete(r.byUser, session.UserID)
	}
}
