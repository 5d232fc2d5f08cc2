package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill_swap/internal/config"
	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/jwt"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

const minPasswordLength = 8

type authService struct {
	userRepo repository.UserRepository
	audit    AuditService
	jwtCfg   config.JWTConfig
	log      logger.Logger
}

func NewAuthService(userRepo repository.UserRepository, audit AuditService, jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		audit:    audit,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	// Валидация входных данных
	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if len(email) > 255 {
		return nil, apperrors.NewValidationError("email", "is too long")
	}
	// Простая проверка формата email
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, apperrors.NewValidationError("email", "invalid format")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if firstName == "" {
		return nil, apperrors.NewValidationError("firstName", "is required")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return nil, apperrors.NewValidationError("firstName", "name is too long (max 100 characters)")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error("Failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// уникальность email проверяет хранилище
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logAudit(ctx, s.audit, s.log, user.ID, domain.EventTypeUserRegistered, map[string]interface{}{
		"email": email,
	})

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Не раскрываем, существует ли пользователь
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// пользователи внешнего провайдера не имеют локального пароля
	if user.PasswordHash == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Обновление времени последнего входа
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Warn("Failed to update last login", "error", err, "user_id", user.ID)
	}

	user.PasswordHash = ""
	return &LoginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtCfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	// Проверка сессии в БД
	session, err := s.userRepo.GetSessionByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	// Отзыв старой сессии и создание новой
	if err := s.userRepo.RevokeSession(ctx, session.ID, domain.SessionRevokedRefreshed); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		// токен подписан, но пользователя больше нет
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.userRepo.GetSessionByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		return err
	}

	return s.userRepo.RevokeSession(ctx, session.ID, domain.SessionRevokedLogout)
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User) (*TokenResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(user.ID, user.Email, s.jwtCfg.Issuer, s.jwtCfg.AccessSecret, s.jwtCfg.AccessTTL)
	if err != nil {
		s.log.Error("Failed to generate access token", "error", err)
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID, s.jwtCfg.RefreshSecret, s.jwtCfg.RefreshTTL)
	if err != nil {
		s.log.Error("Failed to generate refresh token", "error", err)
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.UserSession{
		ID:               uuid.New(),
		UserID:           user.ID,
		RefreshTokenHash: hashToken(refreshToken),
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.jwtCfg.RefreshTTL),
	}
	if err := s.userRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
