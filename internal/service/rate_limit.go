package service

import (
	"context"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	"skill_swap/pkg/logger"
)

type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
}

type RateLimitService interface {
	Allow(ctx context.Context, policy domain.RateLimitPolicy, subject string) (*RateLimitResult, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

// Allow проверяет счетчик subject в окне политики и учитывает запрос, если лимит не исчерпан
func (s *rateLimitService) Allow(ctx context.Context, policy domain.RateLimitPolicy, subject string) (*RateLimitResult, error) {
	key := policy.Scope + ":" + subject

	allowed, err := s.rateLimitRepo.CheckLimit(ctx, key, policy.Limit, policy.Window)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return &RateLimitResult{Allowed: false, Limit: policy.Limit}, nil
	}

	count, err := s.rateLimitRepo.Increment(ctx, key, policy.Window)
	if err != nil {
		return nil, err
	}

	remaining := policy.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{Allowed: true, Limit: policy.Limit, Remaining: remaining}, nil
}
