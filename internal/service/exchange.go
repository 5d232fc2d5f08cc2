package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type ExchangeService interface {
	Propose(ctx context.Context, requesterID uuid.UUID, input ProposeExchangeInput) (*domain.SkillExchange, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SkillExchange, error)
	UpdateStatus(ctx context.Context, exchangeID, userID uuid.UUID, status string) (*domain.SkillExchange, error)
}

type ProposeExchangeInput struct {
	ProviderID       uuid.UUID
	RequesterSkillID *uuid.UUID
	ProviderSkillID  *uuid.UUID
	ScheduledAt      *time.Time
	Notes            *string
}

var errProviderOnlyAccept = fmt.Errorf("only the provider can accept an exchange: %w", apperrors.ErrForbidden)

type exchangeService struct {
	exchangeRepo  repository.ExchangeRepository
	userRepo      repository.UserRepository
	skillRepo     repository.SkillRepository
	conversations ConversationService
	chat          ChatService
	audit         AuditService
	log           logger.Logger
}

func NewExchangeService(
	exchangeRepo repository.ExchangeRepository,
	userRepo repository.UserRepository,
	skillRepo repository.SkillRepository,
	conversations ConversationService,
	chat ChatService,
	audit AuditService,
	log logger.Logger,
) ExchangeService {
	return &exchangeService{
		exchangeRepo:  exchangeRepo,
		userRepo:      userRepo,
		skillRepo:     skillRepo,
		conversations: conversations,
		chat:          chat,
		audit:         audit,
		log:           log,
	}
}

// Propose создает обмен в статусе pending и публикует предложение в переписке пары
func (s *exchangeService) Propose(ctx context.Context, requesterID uuid.UUID, input ProposeExchangeInput) (*domain.SkillExchange, error) {
	if input.ProviderID == uuid.Nil {
		return nil, apperrors.NewValidationError("providerId", "is required")
	}
	if input.ProviderID == requesterID {
		return nil, apperrors.NewValidationError("providerId", "cannot propose an exchange to yourself")
	}

	provider, err := s.userRepo.GetByID(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}

	requesterSkill, err := s.checkSkillOwner(ctx, input.RequesterSkillID, requesterID, "requesterSkillId")
	if err != nil {
		return nil, err
	}
	providerSkill, err := s.checkSkillOwner(ctx, input.ProviderSkillID, input.ProviderID, "providerSkillId")
	if err != nil {
		return nil, err
	}

	var notes *string
	if input.Notes != nil {
		notes = optionalString(*input.Notes)
	}
	if notes != nil && len(*notes) > domain.MaxExchangeNotesLength {
		return nil, apperrors.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxExchangeNotesLength))
	}

	content := proposalText(requesterSkill, providerSkill, notes)
	if len(content) > maxMessageLength {
		return nil, apperrors.NewValidationError("notes", "proposal is too long")
	}

	// переписка разрешается до записи обмена
	conv, err := s.conversations.GetOrCreate(ctx, requesterID, input.ProviderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exchange := &domain.SkillExchange{
		ID:               uuid.New(),
		RequesterID:      requesterID,
		ProviderID:       input.ProviderID,
		RequesterSkillID: input.RequesterSkillID,
		ProviderSkillID:  input.ProviderSkillID,
		Status:           domain.ExchangeStatusPending,
		ScheduledAt:      input.ScheduledAt,
		Notes:            notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.exchangeRepo.Create(ctx, exchange); err != nil {
		return nil, err
	}

	profile := provider.Profile()
	exchange.Provider = &profile

	if _, err := s.chat.SendMessage(ctx, SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       requesterID,
		Content:        content,
		MessageType:    domain.MessageTypeExchangeProposal,
		Metadata: map[string]interface{}{
			"exchangeId": exchange.ID.String(),
		},
	}); err != nil {
		s.discard(ctx, exchange.ID)
		return nil, err
	}

	logAudit(ctx, s.audit, s.log, requesterID, domain.EventTypeExchangeProposed, map[string]interface{}{
		"exchange_id": exchange.ID.String(),
		"provider_id": input.ProviderID.String(),
	})

	return exchange, nil
}

// discard удаляет обмен, предложение по которому не удалось опубликовать
func (s *exchangeService) discard(ctx context.Context, exchangeID uuid.UUID) {
	if err := s.exchangeRepo.Delete(context.WithoutCancel(ctx), exchangeID); err != nil {
		s.log.Error("Failed to discard unpublished exchange", "error", err, "exchange_id", exchangeID)
	}
}

func (s *exchangeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.SkillExchange, error) {
	return s.exchangeRepo.ListByUser(ctx, userID)
}

// UpdateStatus: принять может только provider, отменить или завершить - любой участник
func (s *exchangeService) UpdateStatus(ctx context.Context, exchangeID, userID uuid.UUID, status string) (*domain.SkillExchange, error) {
	status = strings.ToLower(strings.TrimSpace(status))

	exchange, err := s.exchangeRepo.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !exchange.HasParticipant(userID) {
		return nil, apperrors.ErrNotExchangeParticipant
	}
	if !domain.CanTransition(exchange.Status, status) {
		return nil, apperrors.ErrInvalidStatusTransition
	}
	if status == domain.ExchangeStatusAccepted && userID != exchange.ProviderID {
		return nil, errProviderOnlyAccept
	}

	from := exchange.Status
	exchange.Status = status
	if status == domain.ExchangeStatusCompleted {
		now := time.Now()
		exchange.CompletedAt = &now
	}

	if err := s.exchangeRepo.UpdateStatus(ctx, exchange, from); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("exchange status changed concurrently: %w", err)
		}
		return nil, err
	}

	conv, err := s.conversations.GetOrCreate(ctx, exchange.RequesterID, exchange.ProviderID)
	if err != nil {
		s.log.Warn("Failed to resolve exchange conversation", "error", err, "exchange_id", exchange.ID)
	} else if _, err := s.chat.SendMessage(ctx, SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       userID,
		Content:        "Exchange " + status,
		MessageType:    domain.MessageTypeSystem,
		Metadata: map[string]interface{}{
			"exchangeId": exchange.ID.String(),
			"status":     status,
		},
	}); err != nil {
		s.log.Warn("Failed to post exchange status message", "error", err, "exchange_id", exchange.ID)
	}

	logAudit(ctx, s.audit, s.log, userID, domain.EventTypeExchangeStatusChanged, map[string]interface{}{
		"exchange_id": exchange.ID.String(),
		"from":        from,
		"to":          status,
	})

	return exchange, nil
}

func (s *exchangeService) checkSkillOwner(ctx context.Context, skillID *uuid.UUID, ownerID uuid.UUID, field string) (*domain.Skill, error) {
	if skillID == nil {
		return nil, nil
	}
	skill, err := s.skillRepo.GetByID(ctx, *skillID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSkillNotFound) {
			return nil, apperrors.NewValidationError(field, "skill not found")
		}
		return nil, err
	}
	if skill.UserID != ownerID || !skill.IsActive {
		return nil, apperrors.NewValidationError(field, "skill does not belong to the user")
	}
	return skill, nil
}

func proposalText(offered, wanted *domain.Skill, notes *string) string {
	var b strings.Builder
	b.WriteString("Skill exchange proposal")
	if offered != nil {
		b.WriteString(": offering ")
		b.WriteString(offered.Title)
	}
	if wanted != nil {
		if offered != nil {
			b.WriteString(" for ")
		} else {
			b.WriteString(": requesting ")
		}
		b.WriteString(wanted.Title)
	}
	if notes != nil {
		b.WriteString("\n")
		b.WriteString(*notes)
	}
	return b.String()
}
