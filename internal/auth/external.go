package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/service"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

const externalUserPath = "/auth/v1/user"

// providerUser - ответ провайдера на GET /auth/v1/user
type providerUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	UserMetadata     struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

// External проверяет bearer токен у внешнего провайдера и заводит пользователя в users
// при первом обращении
type External struct {
	client *resty.Client
	users  service.UserService
	log    logger.Logger
}

func NewExternal(cfg config.AuthConfig, users service.UserService, log logger.Logger) *External {
	client := resty.New().
		SetBaseURL(cfg.ExternalURL).
		SetTimeout(cfg.ExternalTimeout).
		SetHeader("apikey", cfg.ExternalAPIKey).
		SetHeader("Accept", "application/json")

	return &External{
		client: client,
		users:  users,
		log:    log.With("component", "external_auth"),
	}
}

func (a *External) Authenticate(r *http.Request) (*domain.User, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}

	var identity providerUser
	resp, err := a.client.R().
		SetContext(r.Context()).
		SetAuthToken(token).
		SetResult(&identity).
		Get(externalUserPath)
	if err != nil {
		a.log.Error("Identity provider request failed", "error", err)
		return nil, apperrors.StoreUnavailable(err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, apperrors.ErrInvalidToken
	case resp.StatusCode() >= http.StatusInternalServerError:
		a.log.Error("Identity provider unavailable", "status", resp.StatusCode())
		return nil, apperrors.StoreUnavailable(fmt.Errorf("identity provider returned %d", resp.StatusCode()))
	case resp.StatusCode() != http.StatusOK:
		a.log.Warn("Identity provider rejected token", "status", resp.StatusCode())
		return nil, apperrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(identity.ID)
	if err != nil {
		a.log.Warn("Identity provider returned invalid user id", "user_id", identity.ID)
		return nil, apperrors.ErrInvalidToken
	}

	return a.users.Provision(r.Context(), identity.toUser(userID))
}

func (p *providerUser) toUser(id uuid.UUID) *domain.User {
	firstName := strings.TrimSpace(p.UserMetadata.FirstName)
	lastName := strings.TrimSpace(p.UserMetadata.LastName)
	if firstName == "" && p.UserMetadata.FullName != "" {
		parts := strings.SplitN(strings.TrimSpace(p.UserMetadata.FullName), " ", 2)
		firstName = parts[0]
		if len(parts) == 2 {
			lastName = parts[1]
		}
	}
	if firstName == "" {
		// имя до @ лучше, чем пустой профиль
		firstName = strings.SplitN(p.Email, "@", 2)[0]
	}

	now := time.Now()
	user := &domain.User{
		ID:         id,
		Email:      strings.ToLower(strings.TrimSpace(p.Email)),
		FirstName:  firstName,
		LastName:   lastName,
		IsVerified: p.EmailConfirmedAt != nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.UserMetadata.AvatarURL != "" {
		avatar := p.UserMetadata.AvatarURL
		user.ProfileImageURL = &avatar
	}
	return user
}
