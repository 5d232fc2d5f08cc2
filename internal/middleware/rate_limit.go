package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/domain"
	"skill_swap/internal/service"
	"skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
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

// Limit считает запросы по пользователю, если он уже аутентифицирован, иначе по IP.
// Сбой счетчика запрос не блокирует.
func (m *RateLimitMiddleware) Limit(policy domain.RateLimitPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := "ip:" + c.ClientIP()
		if userID, ok := CurrentUserID(c); ok {
			subject = "user:" + userID.String()
		}

		result, err := m.rateLimitService.Allow(c.Request.Context(), policy, subject)
		if err != nil {
			m.log.Warn("Rate limit check failed", "error", err, "scope", policy.Scope)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.NewAPIError("rate limit exceeded", http.StatusTooManyRequests))
			return
		}

		c.Next()
	}
}
