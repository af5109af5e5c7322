package service

import (
	"context"
	"fmt"
	"strings"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error)
	ListOthers(ctx context.Context, userID uuid.UUID, search string) ([]domain.UserSummary, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
}

// ProfileInput carries a partial profile update. Nil fields are left as is;
// an empty AvatarURL or Bio clears the field.
type ProfileInput struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		displayName := strings.TrimSpace(*input.DisplayName)
		if displayName == "" {
			return nil, fmt.Errorf("%w: display name must not be empty", apperrors.ErrBadRequest)
		}
		user.DisplayName = displayName
	}
	if input.Bio != nil {
		user.Bio = optional(*input.Bio)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = optional(*input.AvatarURL)
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		s.log.Error("Failed to update profile", "error", err, "user_id", userID)
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) ListOthers(ctx context.Context, userID uuid.UUID, search string) ([]domain.UserSummary, error) {
	users, err := s.userRepo.ListExcept(ctx, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u *domain.User, _ int) domain.UserSummary { return u.Summary() }), nil
}

func (s *userService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, fmt.Errorf("%w: username is required", apperrors.ErrBadRequest)
	}
	exists, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *userService) Stats(ctx context.Context) (*domain.UserStats, error) {
	return s.userRepo.Stats(ctx)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
