package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"skill_swap/internal/repository"
	"skill_swap/pkg/logger"
)

const janitorRunTimeout = time.Minute

// SessionJanitor периодически удаляет истекшие и отозванные refresh-сессии
type SessionJanitor struct {
	userRepo repository.UserRepository
	cron     *cron.Cron
	log      logger.Logger
	now      func() time.Time
}

func NewSessionJanitor(userRepo repository.UserRepository, schedule string, log logger.Logger) (*SessionJanitor, error) {
	j := &SessionJanitor{
		userRepo: userRepo,
		cron:     cron.New(),
		log:      log.With("component", "session_janitor"),
		now:      time.Now,
	}

	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", schedule, err)
	}
	return j, nil
}

func (j *SessionJanitor) Start() {
	j.cron.Start()
	j.log.Info("Session janitor started")
}

// Stop останавливает расписание и ждет завершения текущего запуска
func (j *SessionJanitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.log.Warn("Session janitor did not stop in time")
	}
}

// RunOnce выполняет одну очистку
func (j *SessionJanitor) RunOnce(ctx context.Context) (int64, error) {
	return j.userRepo.DeleteExpiredSessions(ctx, j.now())
}

func (j *SessionJanitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), janitorRunTimeout)
	defer cancel()

	deleted, err := j.RunOnce(ctx)
	if err != nil {
		j.log.Error("Session cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.log.Info("Expired sessions removed", "count", deleted)
	}
}
