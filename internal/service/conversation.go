package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

type ConversationService interface {
	GetOrCreate(ctx context.Context, userID, participantID uuid.UUID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error)
	Get(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Conversation, error)
}

type conversationService struct {
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	log              logger.Logger
}

func NewConversationService(conversationRepo repository.ConversationRepository, userRepo repository.UserRepository, log logger.Logger) ConversationService {
	return &conversationService{
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		log:              log,
	}
}

// GetOrCreate возвращает единственную переписку пары независимо от порядка аргументов.
// Существующая переписка возвращается без изменений. При гонке двух первых контактов
// уникальный индекс пары отклоняет вторую вставку, и поиск повторяется один раз.
func (s *conversationService) GetOrCreate(ctx context.Context, userID, participantID uuid.UUID) (*domain.Conversation, error) {
	if userID == participantID {
		return nil, apperrors.ErrSelfConversation
	}

	if _, err := s.userRepo.GetByID(ctx, participantID); err != nil {
		return nil, err
	}

	conv, err := s.conversationRepo.FindByParticipants(ctx, userID, participantID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, apperrors.ErrConversationNotFound) {
		return nil, err
	}

	now := time.Now()
	conv = &domain.Conversation{
		ID:             uuid.New(),
		ParticipantAID: userID,
		ParticipantBID: participantID,
		LastActivityAt: now,
		CreatedAt:      now,
	}

	err = s.conversationRepo.Create(ctx, conv)
	switch {
	case err == nil:
		s.log.Info("Conversation created", "conversation_id", conv.ID, "participant_a", userID, "participant_b", participantID)
		return conv, nil
	case errors.Is(err, apperrors.ErrConflict):
		s.log.Debug("Conversation created concurrently, reloading", "participant_a", userID, "participant_b", participantID)
		return s.conversationRepo.FindByParticipants(ctx, userID, participantID)
	default:
		return nil, err
	}
}

func (s *conversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ConversationSummary, error) {
	return s.conversationRepo.ListByUser(ctx, userID)
}

// Get возвращает переписку только ее участнику
func (s *conversationService) Get(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return conv, nil
}
