package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is always between exactly two distinct users. Participants is
// kept in canonical order so the pair key is stable.
type Conversation struct {
	ID           uuid.UUID    `json:"id"`
	Participants [2]uuid.UUID `json:"participants"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type ConversationSummary struct {
	ID              uuid.UUID   `json:"id"`
	OtherUser       UserSummary `json:"otherUser"`
	LastMessageText string      `json:"lastMessage"`
	LastMessageTime time.Time   `json:"lastMessageTime"`
}

// OrderedPair returns a and b in canonical order.
func OrderedPair(a, b uuid.UUID) [2]uuid.UUID {
	if b.String() < a.String() {
		return [2]uuid.UUID{b, a}
	}
	return [2]uuid.UUID{a, b}
}

// PairKey identifies the unordered pair {a, b}: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b uuid.UUID) string {
	pair := OrderedPair(a, b)
	return pair[0].String() + ":" + pair[1].String()
}

func NewConversation(a, b uuid.UUID, now time.Time) *Conversation {
	return &Conversation{
		ID:           uuid.New(),
		Participants: OrderedPair(a, b),
		CreatedAt:    now,
	}
}

func (c *Conversation) PairKey() string {
	return PairKey(c.Participants[0], c.Participants[1])
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// OtherParticipant returns the participant that is not userID. ok is false
// when userID is not part of the conversation.
func (c *Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case c.Participants[0]:
		return c.Participants[1], true
	case c.Participants[1]:
		return c.Participants[0], true
	default:
		return uuid.Nil, false
	}
}
