package handler

import (
	"net/http"

	"direct_messenger/internal/service"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	userService service.UserService
	log         logger.Logger
}

func NewHealthHandler(userService service.UserService, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		userService: userService,
		log:         log,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	stats, err := h.userService.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "direct-messenger",
		"users":   stats.Total,
		"online":  stats.Online,
	})
}
