package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	PasswordHash string     `json:"-"`
	AvatarURL    *string    `json:"avatarUrl,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	IsOnline     bool       `json:"isOnline"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	// Seq is the registration order, used to keep the directory stable.
	Seq int64 `json:"-"`
}

// UserSummary is the directory entry other users get to see.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	IsOnline    bool      `json:"isOnline"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		IsOnline:    u.IsOnline,
	}
}

// Matches reports whether search occurs in the display name or username,
// ignoring case. An empty search matches everyone.
func (u *User) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(u.DisplayName), needle) ||
		strings.Contains(strings.ToLower(u.Username), needle)
}

// Public returns a copy without the credential.
func (u *User) Public() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

type UserStats struct {
	Total  int `json:"users"`
	Online int `json:"online"`
}
