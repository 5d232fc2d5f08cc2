package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	"skill_swap/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorUserID *uuid.UUID, eventType string, payload map[string]interface{}) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorUserID *uuid.UUID, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: actorUserID,
		EventType:   eventType,
		Payload:     payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}

// logAudit пишет событие аудита; сбой аудита не отменяет основную операцию
func logAudit(ctx context.Context, audit AuditService, log logger.Logger, actor uuid.UUID, eventType string, payload map[string]interface{}) {
	if err := audit.LogEvent(ctx, &actor, eventType, payload); err != nil {
		log.Warn("Failed to write audit event", "error", err, "event_type", eventType)
	}
}
