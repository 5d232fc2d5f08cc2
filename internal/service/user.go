package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserWithStats, error)
	Provision(ctx context.Context, user *domain.User) (*domain.User, error)
}

// UpdateProfileInput - nil поле не меняется
type UpdateProfileInput struct {
	FirstName       *string
	LastName        *string
	Bio             *string
	Title           *string
	ProfileImageURL *string
}

type userService struct {
	userRepo repository.UserRepository
	audit    AuditService
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, audit AuditService, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		audit:    audit,
		log:      log,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" || len(name) > 100 {
			return nil, apperrors.NewValidationError("firstName", "must be 1-100 characters")
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if len(name) > 100 {
			return nil, apperrors.NewValidationError("lastName", "must be at most 100 characters")
		}
		user.LastName = name
	}
	if input.Bio != nil {
		if len(*input.Bio) > 2000 {
			return nil, apperrors.NewValidationError("bio", "must be at most 2000 characters")
		}
		user.Bio = optionalString(*input.Bio)
	}
	if input.Title != nil {
		if len(*input.Title) > 200 {
			return nil, apperrors.NewValidationError("title", "must be at most 200 characters")
		}
		user.Title = optionalString(*input.Title)
	}
	if input.ProfileImageURL != nil {
		user.ProfileImageURL = optionalString(*input.ProfileImageURL)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserWithStats, error) {
	profile, err := s.userRepo.GetWithStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.PasswordHash = ""
	return profile, nil
}

// Provision сохраняет пользователя внешнего провайдера при первом входе и возвращает
// сохраненную строку. Каждый аутентифицированный вызов опирается на реальную запись в users.
func (s *userService) Provision(ctx context.Context, user *domain.User) (*domain.User, error) {
	created, err := s.userRepo.CreateIfNotExists(ctx, user)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("Provisioned external user", "user_id", user.ID)
		logAudit(ctx, s.audit, s.log, user.ID, domain.EventTypeUserProvisioned, map[string]interface{}{
			"email": user.Email,
		})
	}

	return s.GetMe(ctx, user.ID)
}

// optionalString превращает пустую строку после trim в NULL
func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
