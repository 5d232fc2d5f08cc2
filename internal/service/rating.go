package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type RatingService interface {
	Create(ctx context.Context, raterID uuid.UUID, input CreateRatingInput) (*domain.UserRating, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserRating, error)
}

type CreateRatingInput struct {
	RatedUserID uuid.UUID
	ExchangeID  *uuid.UUID
	Rating      int
	Review      *string
}

type ratingService struct {
	ratingRepo   repository.RatingRepository
	userRepo     repository.UserRepository
	exchangeRepo repository.ExchangeRepository
	audit        AuditService
	log          logger.Logger
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	exchangeRepo repository.ExchangeRepository,
	audit AuditService,
	log logger.Logger,
) RatingService {
	return &ratingService{
		ratingRepo:   ratingRepo,
		userRepo:     userRepo,
		exchangeRepo: exchangeRepo,
		audit:        audit,
		log:          log,
	}
}

func (s *ratingService) Create(ctx context.Context, raterID uuid.UUID, input CreateRatingInput) (*domain.UserRating, error) {
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, apperrors.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if input.RatedUserID == raterID {
		return nil, apperrors.NewValidationError("ratedUserId", "cannot rate yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, input.RatedUserID); err != nil {
		return nil, err
	}

	if input.ExchangeID != nil {
		exchange, err := s.exchangeRepo.GetByID(ctx, *input.ExchangeID)
		if err != nil {
			return nil, err
		}
		if !exchange.HasParticipant(raterID) || !exchange.HasParticipant(input.RatedUserID) {
			return nil, apperrors.ErrNotExchangeParticipant
		}
		if exchange.Status != domain.ExchangeStatusCompleted {
			return nil, apperrors.NewValidationError("exchangeId", "exchange is not completed")
		}
	}

	rating := &domain.UserRating{
		ID:          uuid.New(),
		RaterID:     raterID,
		RatedUserID: input.RatedUserID,
		ExchangeID:  input.ExchangeID,
		Rating:      input.Rating,
		CreatedAt:   time.Now(),
	}
	if input.Review != nil {
		rating.Review = optionalString(*input.Review)
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrAlreadyRated
		}
		return nil, err
	}

	logAudit(ctx, s.audit, s.log, raterID, domain.EventTypeRatingCreated, map[string]interface{}{
		"rated_user_id": input.RatedUserID.String(),
		"rating":        input.Rating,
	})

	return rating, nil
}

func (s *ratingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserRating, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.ratingRepo.ListByRatedUser(ctx, userID)
}
