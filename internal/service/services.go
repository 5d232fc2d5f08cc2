package service

import (
	"skill_swap/internal/config"
	"skill_swap/internal/repository"
	"skill_swap/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Skill        SkillService
	Conversation ConversationService
	Chat         ChatService
	Exchange     ExchangeService
	Rating       RatingService
	RateLimit    RateLimitService
	Audit        AuditService
}

// NewServices собирает сервисы. notifier получает каждое сохраненное сообщение
// для живой доставки; nil отключает доставку.
func NewServices(repos *repository.Repositories, notifier MessageNotifier, cfg *config.Config, log logger.Logger) *Services {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	audit := NewAuditService(repos.Audit, log)
	conversations := NewConversationService(repos.Conversation, repos.User, log)
	chat := NewChatService(repos.Message, repos.Conversation, repos.User, notifier, log)

	return &Services{
		Auth:         NewAuthService(repos.User, audit, cfg.JWT, log),
		User:         NewUserService(repos.User, audit, log),
		Skill:        NewSkillService(repos.Skill, log),
		Conversation: conversations,
		Chat:         chat,
		Exchange:     NewExchangeService(repos.Exchange, repos.User, repos.Skill, conversations, chat, audit, log),
		Rating:       NewRatingService(repos.Rating, repos.User, repos.Exchange, audit, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Audit:        audit,
	}
}
