package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"direct_messenger/internal/config"
	"direct_messenger/internal/domain"
	"direct_messenger/internal/metrics"
	"direct_messenger/internal/repository"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	IssueToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
	Logout(ctx context.Context, token string) error
}

type RegisterInput struct {
	Email       string
	Username    string
	DisplayName string
	Password    string
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

const tokenBytes = 32

// tokenLength is the encoded size of a token; anything else is rejected
// before touching the session table.
var tokenLength = base64.RawURLEncoding.EncodedLen(tokenBytes)

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	authCfg     config.AuthConfig
	now         Clock
	log         logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, authCfg config.AuthConfig, now Clock, log logger.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		authCfg:     authCfg,
		now:         now,
		log:         log,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (result *AuthResult, err error) {
	defer func() { metrics.ObserveAuth("register", err) }()

	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	displayName := strings.TrimSpace(input.DisplayName)

	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrBadRequest)
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrBadRequest)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", apperrors.ErrBadRequest)
	}
	if displayName == "" {
		displayName = username
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.authCfg.BcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(passwordHash),
		IsOnline:     true,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentity) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		s.log.Error("Failed to create user", "error", err, "email", email)
		return nil, err
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		// Пользователь уже создан, клиент может просто войти
		s.log.Error("User registered without a session", "error", err, "user_id", user.ID)
		return nil, err
	}

	s.log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return &AuthResult{User: user.Public(), Token: token}, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (result *AuthResult, err error) {
	defer func() { metrics.ObserveAuth("login", err) }()

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetOnline(ctx, user.ID, true, s.now()); err != nil {
		s.log.Warn("Failed to mark user online", "error", err, "user_id", user.ID)
	} else {
		user.IsOnline = true
	}

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// IssueToken returns the active token of userID, so every device of a user
// shares one token. A fresh random token is created only when the user has
// none or it expired.
func (s *authService) IssueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	active, err := s.sessionRepo.ActiveFor(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if active != nil {
		return active.Token, nil
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		s.log.Error("Failed to generate token", "error", err)
		return "", fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	session := &domain.Session{
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.authCfg.TokenTTL),
	}
	// Параллельный вход мог успеть раньше, тогда берём его токен
	active, err = s.sessionRepo.Acquire(ctx, session)
	if err != nil {
		s.log.Error("Failed to store session", "error", err, "user_id", userID)
		return "", fmt.Errorf("store session: %w", err)
	}
	return active.Token, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	if len(token) != tokenLength {
		return uuid.Nil, apperrors.ErrUnauthenticated
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return uuid.Nil, apperrors.ErrUnauthenticated
	}

	session, err := s.sessionRepo.Resolve(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	return session.UserID, nil
}

func (s *authService) Logout(ctx context.Context, token string) (err error) {
	defer func() { metrics.ObserveAuth("logout", err) }()

	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Revoke(ctx, token); err != nil {
		s.log.Error("Failed to revoke session", "error", err, "user_id", userID)
		return err
	}
	if err := s.userRepo.SetOnline(ctx, userID, false, s.now()); err != nil {
		s.log.Warn("Failed to mark user offline", "error", err, "user_id", userID)
		return err
	}
	return nil
}
