package handler

import (
	"github.com/gin-gonic/gin"

	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/middleware"
	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

func NewRouter(cfg *config.Config, h *Handlers, services *service.Services, authMiddleware *middleware.AuthMiddleware, log logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	rateLimit := middleware.NewRateLimitMiddleware(services.RateLimit, log)
	authPolicy := domain.RateLimitPolicy{Scope: domain.RateLimitScopeAuth, Limit: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}
	messagePolicy := domain.RateLimitPolicy{Scope: domain.RateLimitScopeMessage, Limit: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}

	router.GET("/health", h.Health.Check)

	// Живой канал; токен в заголовке или в ?access_token=
	router.GET("/ws", h.WebSocket.Handle)

	v1 := router.Group("/api/v1")
	{
		// Локальные учетные данные есть только в режиме local
		if cfg.Auth.Mode == config.AuthModeLocal {
			authGroup := v1.Group("/auth")
			authGroup.Use(rateLimit.Limit(authPolicy))
			{
				authGroup.POST("/register", h.Auth.Register)
				authGroup.POST("/login", h.Auth.Login)
				authGroup.POST("/refresh", h.Auth.RefreshToken)
				authGroup.POST("/logout", h.Auth.Logout)
			}
		}

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.GetMe)
				users.PUT("/me", h.User.UpdateMe)
				users.GET("/:id", h.User.GetProfile)
				users.GET("/:id/ratings", h.User.GetRatings)
			}

			skills := protected.Group("/skills")
			{
				skills.POST("", h.Skill.Create)
				skills.GET("", h.Skill.List)
				skills.GET("/user/:userId", h.Skill.ListByUser)
				skills.PUT("/:id", h.Skill.Update)
				skills.DELETE("/:id", h.Skill.Delete)
			}

			conversations := protected.Group("/conversations")
			{
				conversations.POST("", h.Conversation.Create)
				conversations.GET("", h.Conversation.List)
				conversations.GET("/:id/messages", h.Conversation.GetMessages)
				conversations.POST("/:id/messages", rateLimit.Limit(messagePolicy), h.Conversation.SendMessage)
			}

			exchanges := protected.Group("/exchanges")
			{
				exchanges.POST("", h.Exchange.Propose)
				exchanges.GET("", h.Exchange.List)
				exchanges.PUT("/:id/status", h.Exchange.UpdateStatus)
			}

			protected.POST("/ratings", h.Rating.Create)
		}
	}

	return router
}
