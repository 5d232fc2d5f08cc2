package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"skill_swap/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Skill        SkillRepository
	Conversation ConversationRepository
	Message      MessageRepository
	Exchange     ExchangeRepository
	Rating       RatingRepository
	Audit        AuditRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, log),
		Skill:        NewSkillRepository(db, log),
		Conversation: NewConversationRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Exchange:     NewExchangeRepository(db, log),
		Rating:       NewRatingRepository(db, log),
		Audit:        NewAuditRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
