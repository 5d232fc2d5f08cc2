package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type SkillService interface {
	Create(ctx context.Context, userID uuid.UUID, input SkillInput) (*domain.Skill, error)
	List(ctx context.Context, filter domain.SkillFilter) ([]*domain.Skill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Skill, error)
	Update(ctx context.Context, skillID, userID uuid.UUID, input SkillInput) (*domain.Skill, error)
	Delete(ctx context.Context, skillID, userID uuid.UUID) error
}

type SkillInput struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Level       string
	Seeking     *string
}

func (in *SkillInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Level = strings.ToLower(strings.TrimSpace(in.Level))

	if in.Title == "" || len(in.Title) > 200 {
		return apperrors.NewValidationError("title", "must be 1-200 characters")
	}
	if in.Category == "" {
		return apperrors.NewValidationError("category", "is required")
	}
	if in.Level == "" {
		in.Level = domain.SkillLevelBeginner
	}
	if !domain.IsValidSkillLevel(in.Level) {
		return apperrors.NewValidationError("level", "must be one of beginner, intermediate, advanced, expert")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
	if in.Seeking != nil {
		in.Seeking = optionalString(*in.Seeking)
	}
	return nil
}

type skillService struct {
	skillRepo repository.SkillRepository
	log       logger.Logger
}

func NewSkillService(skillRepo repository.SkillRepository, log logger.Logger) SkillService {
	return &skillService{
		skillRepo: skillRepo,
		log:       log,
	}
}

func (s *skillService) Create(ctx context.Context, userID uuid.UUID, input SkillInput) (*domain.Skill, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	now := time.Now()
	skill := &domain.Skill{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Tags:        input.Tags,
		Level:       input.Level,
		Seeking:     input.Seeking,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.skillRepo.Create(ctx, skill); err != nil {
		return nil, err
	}

	s.log.Info("Skill created", "skill_id", skill.ID, "user_id", userID)
	return skill, nil
}

func (s *skillService) List(ctx context.Context, filter domain.SkillFilter) ([]*domain.Skill, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.skillRepo.List(ctx, filter)
}

func (s *skillService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Skill, error) {
	return s.skillRepo.ListByUser(ctx, userID)
}

func (s *skillService) Update(ctx context.Context, skillID, userID uuid.UUID, input SkillInput) (*domain.Skill, error) {
	skill, err := s.ownedSkill(ctx, skillID, userID)
	if err != nil {
		return nil, err
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}

	skill.Title = input.Title
	skill.Description = input.Description
	skill.Category = input.Category
	skill.Tags = input.Tags
	skill.Level = input.Level
	skill.Seeking = input.Seeking

	if err := s.skillRepo.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// Delete снимает навык с публикации, строка остается для истории обменов
func (s *skillService) Delete(ctx context.Context, skillID, userID uuid.UUID) error {
	if _, err := s.ownedSkill(ctx, skillID, userID); err != nil {
		return err
	}
	return s.skillRepo.Deactivate(ctx, skillID)
}

func (s *skillService) ownedSkill(ctx context.Context, skillID, userID uuid.UUID) (*domain.Skill, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if !skill.IsActive {
		return nil, apperrors.ErrSkillNotFound
	}
	if skill.UserID != userID {
		return nil, apperrors.ErrNotOwner
	}
	return skill, nil
}
