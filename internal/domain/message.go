package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	// Seq is the insertion order inside the conversation and breaks
	// timestamp ties.
	Seq int64 `json:"-"`
}

// MessageView is a message as listed to a participant.
type MessageView struct {
	Message
	SenderName   string  `json:"senderName"`
	SenderAvatar *string `json:"senderAvatar,omitempty"`
}

// Before orders messages by timestamp, then by insertion sequence.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}
