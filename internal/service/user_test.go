package service

import (
	"context"
	"testing"

	apperrors "direct_messenger/pkg/errors"

	"github.com/stretchr/testify/require"
)

func TestUserService_ListOthers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newTestServices(t)
	alice, bob, carol := register(t, svc, "alice"), register(t, svc, "bob"), register(t, svc, "carol")

	for _, caller := range []*AuthResult{alice, bob, carol} {
		others, err := svc.User.ListOthers(ctx, caller.User.ID, "")
		req.NoError(err)
		req.Len(others, 2)
		for _, other := range others {
			req.NotEqual(caller.User.ID, other.ID)
		}
	}

	others, err := svc.User.ListOthers(ctx, alice.User.ID, "")
	req.NoError(err)
	req.Equal(bob.User.ID, others[0].ID)
	req.Equal(carol.User.ID, others[1].ID)

	others, err = svc.User.ListOthers(ctx, alice.User.ID, "  CAR ")
	req.NoError(err)
	req.Len(others, 1)
	req.Equal(carol.User.ID, others[0].ID)

	others, err = svc.User.ListOthers(ctx, alice.User.ID, "alice")
	req.NoError(err)
	req.Empty(others)
}

func TestUserService_UpdateMe(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newTestServices(t)
	alice := register(t, svc, "alice")

	name, bio := "  Alice L. ", "curious"
	user, err := svc.User.UpdateMe(ctx, alice.User.ID, ProfileInput{DisplayName: &name, Bio: &bio})
	req.NoError(err)
	req.Equal("Alice L.", user.DisplayName)
	req.Equal("curious", *user.Bio)
	req.Empty(user.PasswordHash)

	empty := ""
	user, err = svc.User.UpdateMe(ctx, alice.User.ID, ProfileInput{Bio: &empty})
	req.NoError(err)
	req.Nil(user.Bio)
	req.Equal("Alice L.", user.DisplayName)

	blank := "   "
	_, err = svc.User.UpdateMe(ctx, alice.User.ID, ProfileInput{DisplayName: &blank})
	req.ErrorIs(err, apperrors.ErrBadRequest)

	me, err := svc.User.GetMe(ctx, alice.User.ID)
	req.NoError(err)
	req.Equal("Alice L.", me.DisplayName)
}

func TestUserService_UsernameAvailable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc, _ := newTestServices(t)
	register(t, svc, "alice")

	available, err := svc.User.UsernameAvailable(ctx, "alice")
	req.NoError(err)
	req.False(available)

	available, err = svc.User.UsernameAvailable(ctx, "bob")
	req.NoError(err)
	req.True(available)

	_, err = svc.User.UsernameAvailable(ctx, "")
	req.ErrorIs(err, apperrors.ErrBadRequest)
}
