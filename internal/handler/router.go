package handler

import (
	"direct_messenger/internal/config"
	"direct_messenger/internal/metrics"
	"direct_messenger/internal/middleware"
	"direct_messenger/internal/service"
	"direct_messenger/pkg/logger"

	"github.com/gin-gonic/gin"
)

func NewRouter(services *service.Services, cfg *config.Config, log logger.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers := NewHandlers(services, log)
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, log)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handlers.Health.Check)

		// Публичные endpoints
		public := api.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit(), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit(), handlers.Auth.Login)
			public.GET("/check-username", handlers.User.CheckUsername)
		}

		// Защищенные endpoints
		protected := api.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.POST("/auth/logout", handlers.Auth.Logout)

			users := protected.Group("/users")
			{
				users.GET("/", handlers.User.List)
				users.GET("/me", handlers.User.GetMe)
				users.PUT("/me", handlers.User.UpdateMe)
			}

			messages := protected.Group("/messages")
			{
				messages.GET("/conversations", handlers.Chat.Conversations)
				messages.GET("/conversations/:id", handlers.Chat.Messages)
				messages.POST("/send", rateLimitMiddleware.LimitUser(), handlers.Chat.Send)
			}
		}
	}

	return router
}
