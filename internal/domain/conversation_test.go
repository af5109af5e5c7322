package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	require.Equal(t, PairKey(a, b), PairKey(b, a))
	require.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}

func TestConversationOtherParticipant(t *testing.T) {
	req := require.New(t)
	alice, bob := uuid.New(), uuid.New()
	conv := NewConversation(alice, bob, time.Now())

	other, ok := conv.OtherParticipant(alice)
	req.True(ok)
	req.Equal(bob, other)

	other, ok = conv.OtherParticipant(bob)
	req.True(ok)
	req.Equal(alice, other)

	_, ok = conv.OtherParticipant(uuid.New())
	req.False(ok)
	req.Equal(PairKey(bob, alice), conv.PairKey())
}

func TestMessageBeforeBreaksTiesBySeq(t *testing.T) {
	at := time.Now()
	first := &Message{CreatedAt: at, Seq: 1}
	second := &Message{CreatedAt: at, Seq: 2}
	later := &Message{CreatedAt: at.Add(time.Microsecond), Seq: 0}

	require.True(t, first.Before(second))
	require.False(t, second.Before(first))
	require.True(t, second.Before(later))
}

func TestUserMatches(t *testing.T) {
	u := &User{Username: "alice", DisplayName: "Alice Liddell"}
	require.True(t, u.Matches(""))
	require.True(t, u.Matches("LIDD"))
	require.True(t, u.Matches("ali"))
	require.False(t, u.Matches("bob"))
}
