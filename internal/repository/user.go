package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	CreateIfNotExists(ctx context.Context, user *domain.User) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetWithStats(ctx context.Context, id uuid.UUID) (*domain.UserWithStats, error)
	Update(ctx context.Context, user *domain.User) error
	CreateSession(ctx context.Context, session *domain.UserSession) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

const userColumns = `id, email, password_hash, first_name, last_name, profile_image_url, bio, title,
		       is_verified, last_login_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type userRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewUserRepository(db *pgxpool.Pool, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	user := &domain.User{}
	dest := []any{
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.ProfileImageURL, &user.Bio, &user.Title, &user.IsVerified, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, profile_image_url, bio, title,
			is_verified, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.ProfileImageURL,
		user.Bio, user.Title, user.IsVerified, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		// Код 23505 = unique_violation
		if pgErr, ok := isUniqueViolation(err); ok {
			r.log.Warn("User already exists (unique violation)", "email", user.Email, "constraint", pgErr.ConstraintName)
			return apperrors.ErrUserAlreadyExists
		}
		r.log.Error("Failed to create user", "error", err, "email", user.Email)
		return storeError(err)
	}

	return nil
}

// CreateIfNotExists создает пользователя внешнего провайдера при первом входе.
// Возвращает false, если строка с таким id уже есть.
func (r *userRepository) CreateIfNotExists(ctx context.Context, user *domain.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL,
		user.IsVerified, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		// email уже занят другим id
		if _, ok := isUniqueViolation(err); ok {
			return false, apperrors.ErrUserAlreadyExists
		}
		r.log.Error("Failed to provision user", "error", err, "user_id", user.ID)
		return false, storeError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by ID", "error", err)
		return nil, storeError(err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	// Нормализация email (lowercase, trim)
	email = strings.ToLower(strings.TrimSpace(email))

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by email", "error", err, "email", email)
		return nil, storeError(err)
	}

	return user, nil
}

func (r *userRepository) GetWithStats(ctx context.Context, id uuid.UUID) (*domain.UserWithStats, error) {
	query := `
		SELECT ` + userColumns + `,
		       COALESCE((SELECT AVG(rating)::float8 FROM user_ratings WHERE rated_user_id = u.id), 0),
		       (SELECT COUNT(*) FROM skill_exchanges
		         WHERE (requester_id = u.id OR provider_id = u.id) AND status = 'completed'),
		       (SELECT COUNT(*) FROM skills WHERE user_id = u.id AND is_active)
		FROM users u
		WHERE u.id = $1
	`

	stats := &domain.UserWithStats{}
	user, err := scanUser(r.db.QueryRow(ctx, query, id), &stats.AvgRating, &stats.TotalExchanges, &stats.SkillsCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user stats", "error", err, "user_id", id)
		return nil, storeError(err)
	}

	stats.User = user
	return stats, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, profile_image_url = $5, bio = $6,
		    title = $7, is_verified = $8, last_login_at = $9, updated_at = $10
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL, user.Bio,
		user.Title, user.IsVerified, user.LastLoginAt, time.Now(),
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to update user", "error", err)
		return storeError(err)
	}

	return nil
}

func (r *userRepository) CreateSession(ctx context.Context, session *domain.UserSession) error {
	query := `
		INSERT INTO user_sessions (id, user_id, refresh_token_hash, created_at, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID, session.UserID, session.RefreshTokenHash,
		session.CreatedAt, session.ExpiresAt, session.IPAddress, session.UserAgent,
	)

	if err != nil {
		r.log.Error("Failed to create session", "error", err)
		return storeError(err)
	}

	return nil
}

func (r *userRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, created_at, expires_at, revoked_at, revoked_reason, ip_address, user_agent
		FROM user_sessions
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`

	session := &domain.UserSession{}
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.RefreshTokenHash,
		&session.CreatedAt, &session.ExpiresAt, &session.RevokedAt,
		&session.RevokedReason, &session.IPAddress, &session.UserAgent,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		r.log.Error("Failed to get session", "error", err)
		return nil, storeError(err)
	}

	return session, nil
}

func (r *userRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	query := `
		UPDATE user_sessions
		SET revoked_at = NOW(), revoked_reason = $2
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, sessionID, reason)
	if err != nil {
		r.log.Error("Failed to revoke session", "error", err)
		return storeError(err)
	}

	return nil
}

func (r *userRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM user_sessions WHERE expires_at < $1 OR revoked_at IS NOT NULL`, before)
	if err != nil {
		r.log.Error("Failed to delete expired sessions", "error", err)
		return 0, storeError(err)
	}
	return tag.RowsAffected(), nil
}
