package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to a user. A user has at most one live session.
type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

const (
	RateLimitScopeIP   = "ip"
	RateLimitScopeUser = "user"
)
