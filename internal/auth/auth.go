// Package auth определяет, кто выполняет запрос. Способ аутентификации выбирается
// один раз при старте и дальше не меняется.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/service"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

// Authenticator возвращает сохраненного пользователя для запроса или ошибку,
// оборачивающую apperrors.ErrUnauthorized
type Authenticator interface {
	Authenticate(r *http.Request) (*domain.User, error)
}

// AccessTokenQueryParam - браузер не может выставить заголовок при открытии websocket
const AccessTokenQueryParam = "access_token"

func New(cfg *config.Config, services *service.Services, log logger.Logger) (Authenticator, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		return NewLocal(services.Auth), nil
	case config.AuthModeExternal:
		return NewExternal(cfg.Auth, services.User, log), nil
	case config.AuthModeNone:
		log.Warn("Authentication is disabled, protected endpoints will reject every request")
		return Reject{}, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// BearerToken достает токен из заголовка Authorization или из query параметра access_token
func BearerToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", fmt.Errorf("invalid authorization header format: %w", apperrors.ErrUnauthorized)
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if token := r.URL.Query().Get(AccessTokenQueryParam); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("authorization header required: %w", apperrors.ErrUnauthorized)
}

// Reject отклоняет любой запрос
type Reject struct{}

func (Reject) Authenticate(*http.Request) (*domain.User, error) {
	return nil, apperrors.ErrAuthDisabled
}
