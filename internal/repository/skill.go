package repository

import (
	"context"
	"errors"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SkillRepository interface {
	Create(ctx context.Context, skill *domain.Skill) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Skill, error)
	List(ctx context.Context, filter domain.SkillFilter) ([]*domain.Skill, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Skill, error)
	Update(ctx context.Context, skill *domain.Skill) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

const skillSelect = `
	SELECT s.id, s.user_id, s.title, s.description, s.category, s.tags, s.level, s.seeking,
	       s.is_active, s.created_at, s.updated_at,
	       u.id, u.first_name, u.last_name, u.profile_image_url, u.title, u.is_verified
	FROM skills s
	JOIN users u ON u.id = s.user_id
`

type skillRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewSkillRepository(db *pgxpool.Pool, log logger.Logger) SkillRepository {
	return &skillRepository{db: db, log: log}
}

// profileDest - поля публичного профиля в порядке столбцов u.id ... u.is_verified
func profileDest(p *domain.PublicProfile) []any {
	return []any{&p.ID, &p.FirstName, &p.LastName, &p.ProfileImageURL, &p.Title, &p.IsVerified}
}

func scanSkill(row rowScanner) (*domain.Skill, error) {
	skill := &domain.Skill{User: &domain.PublicProfile{}}
	dest := []any{
		&skill.ID, &skill.UserID, &skill.Title, &skill.Description, &skill.Category, &skill.Tags,
		&skill.Level, &skill.Seeking, &skill.IsActive, &skill.CreatedAt, &skill.UpdatedAt,
	}
	if err := row.Scan(append(dest, profileDest(skill.User)...)...); err != nil {
		return nil, err
	}
	return skill, nil
}

func (r *skillRepository) Create(ctx context.Context, skill *domain.Skill) error {
	query := `
		INSERT INTO skills (id, user_id, title, description, category, tags, level, seeking, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		skill.ID, skill.UserID, skill.Title, skill.Description, skill.Category, skill.Tags,
		skill.Level, skill.Seeking, skill.IsActive, skill.CreatedAt, skill.UpdatedAt,
	).Scan(&skill.CreatedAt, &skill.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create skill", "error", err, "user_id", skill.UserID)
		return storeError(err)
	}

	return nil
}

func (r *skillRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Skill, error) {
	skill, err := scanSkill(r.db.QueryRow(ctx, skillSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSkillNotFound
		}
		r.log.Error("Failed to get skill", "error", err, "skill_id", id)
		return nil, storeError(err)
	}
	return skill, nil
}

func (r *skillRepository) List(ctx context.Context, filter domain.SkillFilter) ([]*domain.Skill, error) {
	query := skillSelect + `
		WHERE s.is_active
		  AND ($1 = '' OR s.category = $1)
		  AND ($2 = '' OR s.title ILIKE '%' || $2 || '%' OR s.description ILIKE '%' || $2 || '%')
		ORDER BY s.created_at DESC, s.id
	`
	return r.query(ctx, query, filter.Category, filter.Search)
}

func (r *skillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Skill, error) {
	query := skillSelect + `
		WHERE s.user_id = $1 AND s.is_active
		ORDER BY s.created_at DESC, s.id
	`
	return r.query(ctx, query, userID)
}

func (r *skillRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Skill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list skills", "error", err)
		return nil, storeError(err)
	}
	defer rows.Close()

	skills := make([]*domain.Skill, 0)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			r.log.Error("Failed to scan skill", "error", err)
			return nil, storeError(err)
		}
		skills = append(skills, skill)
	}

	return skills, storeError(rows.Err())
}

func (r *skillRepository) Update(ctx context.Context, skill *domain.Skill) error {
	query := `
		UPDATE skills
		SET title = $2, description = $3, category = $4, tags = $5, level = $6, seeking = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		skill.ID, skill.Title, skill.Description, skill.Category, skill.Tags, skill.Level, skill.Seeking,
	).Scan(&skill.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrSkillNotFound
		}
		r.log.Error("Failed to update skill", "error", err, "skill_id", skill.ID)
		return storeError(err)
	}

	return nil
}

// Deactivate - мягкое удаление, навык пропадает из ленты
func (r *skillRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE skills SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to deactivate skill", "error", err, "skill_id", id)
		return storeError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSkillNotFound
	}
	return nil
}
