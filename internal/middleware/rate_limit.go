package middleware

import (
	"math"
	"strconv"

	"direct_messenger/internal/domain"
	"direct_messenger/internal/service"
	apperrors "direct_messenger/pkg/errors"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit counts requests per client IP.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return m.limit(domain.RateLimitScopeIP, func(c *gin.Context) string { return c.ClientIP() })
}

// LimitUser counts requests per authenticated user. It must run after
// RequireAuth.
func (m *RateLimitMiddleware) LimitUser() gin.HandlerFunc {
	return m.limit(domain.RateLimitScopeUser, func(c *gin.Context) string {
		userID, _ := UserID(c)
		return userID.String()
	})
}

func (m *RateLimitMiddleware) limit(scope string, subject func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := m.rateLimitService.Allow(c.Request.Context(), scope, subject(c))
		if err != nil {
			m.log.Error("Rate limit check failed", "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		resetSeconds := strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds())))
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", resetSeconds)

		if !decision.Allowed {
			c.Header("Retry-After", resetSeconds)
			_ = c.Error(apperrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
