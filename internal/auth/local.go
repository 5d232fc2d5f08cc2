package auth

import (
	"net/http"

	"skill_swap/internal/domain"
	"skill_swap/internal/service"
)

// Local проверяет access токены, выпущенные этим сервером
type Local struct {
	authService service.AuthService
}

func NewLocal(authService service.AuthService) *Local {
	return &Local{authService: authService}
}

func (a *Local) Authenticate(r *http.Request) (*domain.User, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	return a.authService.ValidateToken(r.Context(), token)
}
