package repository

import (
	"context"
	"errors"
	"time"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExchangeRepository interface {
	Create(ctx context.Context, exchange *domain.SkillExchange) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SkillExchange, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SkillExchange, error)
	UpdateStatus(ctx context.Context, exchange *domain.SkillExchange, fromStatus string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const exchangeSelect = `
	SELECT e.id, e.requester_id, e.provider_id, e.requester_skill_id, e.provider_skill_id, e.status,
	       e.scheduled_at, e.completed_at, e.notes, e.created_at, e.updated_at,
	       rq.id, rq.first_name, rq.last_name, rq.profile_image_url, rq.title, rq.is_verified,
	       pv.id, pv.first_name, pv.last_name, pv.profile_image_url, pv.title, pv.is_verified
	FROM skill_exchanges e
	JOIN users rq ON rq.id = e.requester_id
	JOIN users pv ON pv.id = e.provider_id
`

type exchangeRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewExchangeRepository(db *pgxpool.Pool, log logger.Logger) ExchangeRepository {
	return &exchangeRepository{db: db, log: log}
}

func scanExchange(row rowScanner) (*domain.SkillExchange, error) {
	e := &domain.SkillExchange{Requester: &domain.PublicProfile{}, Provider: &domain.PublicProfile{}}
	dest := []any{
		&e.ID, &e.RequesterID, &e.ProviderID, &e.RequesterSkillID, &e.ProviderSkillID, &e.Status,
		&e.ScheduledAt, &e.CompletedAt, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	}
	dest = append(dest, profileDest(e.Requester)...)
	dest = append(dest, profileDest(e.Provider)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *exchangeRepository) Create(ctx context.Context, e *domain.SkillExchange) error {
	query := `
		INSERT INTO skill_exchanges (
			id, requester_id, provider_id, requester_skill_id, provider_skill_id, status,
			scheduled_at, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		e.ID, e.RequesterID, e.ProviderID, e.RequesterSkillID, e.ProviderSkillID, e.Status,
		e.ScheduledAt, e.Notes, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		r.log.Error("Failed to create exchange", "error", err)
		return storeError(err)
	}
	return nil
}

func (r *exchangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SkillExchange, error) {
	e, err := scanExchange(r.db.QueryRow(ctx, exchangeSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExchangeNotFound
		}
		r.log.Error("Failed to get exchange", "error", err, "exchange_id", id)
		return nil, storeError(err)
	}
	return e, nil
}

func (r *exchangeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SkillExchange, error) {
	query := exchangeSelect + `
		WHERE e.requester_id = $1 OR e.provider_id = $1
		ORDER BY e.created_at DESC, e.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list exchanges", "error", err, "user_id", userID)
		return nil, storeError(err)
	}
	defer rows.Close()

	exchanges := make([]*domain.SkillExchange, 0)
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			r.log.Error("Failed to scan exchange", "error", err)
			return nil, storeError(err)
		}
		exchanges = append(exchanges, e)
	}

	return exchanges, storeError(rows.Err())
}

// UpdateStatus пишет статус только если он не изменился с момента чтения
func (r *exchangeRepository) UpdateStatus(ctx context.Context, e *domain.SkillExchange, fromStatus string) error {
	query := `
		UPDATE skill_exchanges
		SET status = $2, completed_at = $3, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, e.ID, e.Status, e.CompletedAt, time.Now(), fromStatus).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrConflict
		}
		r.log.Error("Failed to update exchange status", "error", err, "exchange_id", e.ID)
		return storeError(err)
	}
	return nil
}

// Delete нужен только для отката предложения, которое не попало в переписку
func (r *exchangeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM skill_exchanges WHERE id = $1`, id); err != nil {
		r.log.Error("Failed to delete exchange", "error", err, "exchange_id", id)
		return storeError(err)
	}
	return nil
}
