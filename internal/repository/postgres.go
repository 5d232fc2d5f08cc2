package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skill_swap/internal/config"
	apperrors "skill_swap/pkg/errors"
)

const uniqueViolationCode = "23505"

// NewPool открывает пул соединений и проверяет доступность БД
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxIdleTime
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.StoreUnavailable(err)
	}

	return pool, nil
}

func isUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr, true
	}
	return nil, false
}

// storeError переводит сетевые сбои и таймауты в ErrStoreUnavailable
func storeError(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return apperrors.StoreUnavailable(err)
	}
	return err
}
