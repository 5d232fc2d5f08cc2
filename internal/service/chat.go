package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/repository"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

const maxMessageLength = 10000

type ChatService interface {
	SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error)
	GetMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]*domain.Message, error)
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	MessageType    string
	Metadata       map[string]interface{}
}

type chatService struct {
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	notifier         MessageNotifier
	log              logger.Logger
}

func NewChatService(
	messageRepo repository.MessageRepository,
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	notifier MessageNotifier,
	log logger.Logger,
) ChatService {
	return &chatService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		log:              log,
	}
}

// SendMessage сохраняет сообщение и обновляет last activity переписки одной транзакцией,
// затем уведомляет открытые соединения участников. Ошибка доставки не отменяет сохранение.
func (s *chatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "must not be empty")
	}
	if len(content) > maxMessageLength {
		return nil, apperrors.NewValidationError("content", "is too long")
	}

	messageType := input.MessageType
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	if !domain.IsValidMessageType(messageType) {
		return nil, apperrors.NewValidationError("messageType", "must be one of text, exchange_proposal, system")
	}

	conv, err := s.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(input.SenderID) {
		return nil, apperrors.ErrNotParticipant
	}

	message := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       input.SenderID,
		Content:        content,
		MessageType:    messageType,
		Metadata:       input.Metadata,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	conv.LastActivityAt = message.CreatedAt

	if sender, err := s.userRepo.GetByID(ctx, input.SenderID); err == nil {
		profile := sender.Profile()
		message.Sender = &profile
	} else {
		s.log.Warn("Failed to load sender profile", "error", err, "user_id", input.SenderID)
	}

	s.notifier.NotifyNewMessage(ctx, conv, message)
	return message, nil
}

// GetMessages возвращает всю историю по возрастанию времени создания, при равенстве по id
func (s *chatService) GetMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]*domain.Message, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return s.messageRepo.ListByConversation(ctx, conversationID)
}
