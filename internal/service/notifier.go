package service

import (
	"context"

	"skill_swap/internal/domain"
)

// MessageNotifier доставляет событие о новом сообщении открытым соединениям участников.
// Реализация не блокируется на медленных клиентах и не возвращает ошибок.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, conv *domain.Conversation, msg *domain.Message)
}

type NopNotifier struct{}

func (NopNotifier) NotifyNewMessage(context.Context, *domain.Conversation, *domain.Message) {}
