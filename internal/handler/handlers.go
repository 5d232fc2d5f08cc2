package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skill_swap/internal/auth"
	"skill_swap/internal/config"
	"skill_swap/internal/middleware"
	"skill_swap/internal/realtime"
	"skill_swap/internal/service"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Skill        *SkillHandler
	Conversation *ConversationHandler
	Exchange     *ExchangeHandler
	Rating       *RatingHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *realtime.Hub, authenticator auth.Authenticator, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(cfg),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, services.Rating, log),
		Skill:        NewSkillHandler(services.Skill, log),
		Conversation: NewConversationHandler(services.Conversation, services.Chat, log),
		Exchange:     NewExchangeHandler(services.Exchange, log),
		Rating:       NewRatingHandler(services.Rating, log),
		WebSocket:    NewWebSocketHandler(hub, authenticator, cfg.Realtime.SendBuffer, cfg.Server.AllowedOrigins, log),
	}
}

// currentUserID кладет ErrUnauthorized в c.Errors, если RequireAuth не выставил пользователя
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
