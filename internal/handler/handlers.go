package handler

import (
	"errors"
	"fmt"
	"io"

	"direct_messenger/internal/middleware"
	"direct_messenger/internal/service"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handlers struct {
	Health *HealthHandler
	Auth   *AuthHandler
	User   *UserHandler
	Chat   *ChatHandler
}

func NewHandlers(services *service.Services, log logger.Logger) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(services.User, log),
		Auth:   NewAuthHandler(services.Auth, log),
		User:   NewUserHandler(services.User, log),
		Chat:   NewChatHandler(services.Chat, services.View, log),
	}
}

// bindJSON decodes the body into req. A body that cannot be decoded leaves
// req at its zero value, so field validation reports what is missing.
func bindJSON(c *gin.Context, req interface{}, log logger.Logger) {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		log.Debug("Undecodable request body", "error", err, "path", c.FullPath())
	}
}

func currentUser(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, apperrors.ErrUnauthenticated
	}
	return userID, nil
}

func parseID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", apperrors.ErrBadRequest, field)
	}
	return id, nil
}
