package repository

import (
	"context"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *domain.UserRating) error
	ListByRatedUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserRating, error)
}

type ratingRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRatingRepository(db *pgxpool.Pool, log logger.Logger) RatingRepository {
	return &ratingRepository{db: db, log: log}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.UserRating) error {
	query := `
		INSERT INTO user_ratings (id, rater_id, rated_user_id, exchange_id, rating, review, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		rating.ID, rating.RaterID, rating.RatedUserID, rating.ExchangeID, rating.Rating, rating.Review, rating.CreatedAt,
	).Scan(&rating.CreatedAt)

	if err != nil {
		// повторная оценка того же обмена
		if _, ok := isUniqueViolation(err); ok {
			return apperrors.ErrConflict
		}
		r.log.Error("Failed to create rating", "error", err)
		return storeError(err)
	}
	return nil
}

func (r *ratingRepository) ListByRatedUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserRating, error) {
	query := `
		SELECT r.id, r.rater_id, r.rated_user_id, r.exchange_id, r.rating, r.review, r.created_at,
		       u.id, u.first_name, u.last_name, u.profile_image_url, u.title, u.is_verified
		FROM user_ratings r
		JOIN users u ON u.id = r.rater_id
		WHERE r.rated_user_id = $1
		ORDER BY r.created_at DESC, r.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list ratings", "error", err, "user_id", userID)
		return nil, storeError(err)
	}
	defer rows.Close()

	ratings := make([]*domain.UserRating, 0)
	for rows.Next() {
		rating := &domain.UserRating{Rater: &domain.PublicProfile{}}
		dest := []any{
			&rating.ID, &rating.RaterID, &rating.RatedUserID, &rating.ExchangeID,
			&rating.Rating, &rating.Review, &rating.CreatedAt,
		}
		if err := rows.Scan(append(dest, profileDest(rating.Rater)...)...); err != nil {
			r.log.Error("Failed to scan rating", "error", err)
			return nil, storeError(err)
		}
		ratings = append(ratings, rating)
	}

	return ratings, storeError(rows.Err())
}
