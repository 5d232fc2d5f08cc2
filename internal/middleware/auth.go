package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skill_swap/internal/auth"
	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

type AuthMiddleware struct {
	authenticator auth.Authenticator
	log           logger.Logger
}

func NewAuthMiddleware(authenticator auth.Authenticator, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		log:           log,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.authenticator.Authenticate(c.Request)
		if err != nil {
			m.log.Debug("Authentication failed", "error", err, "path", c.Request.URL.Path)
			apiErr := apperrors.FromError(err)
			c.AbortWithStatusJSON(apiErr.Code, apiErr)
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUserID возвращает id пользователя, выставленный RequireAuth
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*domain.User)
	return user, ok
}
