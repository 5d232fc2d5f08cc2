package domain

import (
	"time"

	"github.com/google/uuid"
)

type SkillExchange struct {
	ID               uuid.UUID      `json:"id"`
	RequesterID      uuid.UUID      `json:"requesterId"`
	ProviderID       uuid.UUID      `json:"providerId"`
	RequesterSkillID *uuid.UUID     `json:"requesterSkillId,omitempty"`
	ProviderSkillID  *uuid.UUID     `json:"providerSkillId,omitempty"`
	Status           string         `json:"status"`
	ScheduledAt      *time.Time     `json:"scheduledAt,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	Notes            *string        `json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Requester        *PublicProfile `json:"requester,omitempty"`
	Provider         *PublicProfile `json:"provider,omitempty"`
}

// MaxExchangeNotesLength ограничивает notes, они входят в текст сообщения-предложения
const MaxExchangeNotesLength = 2000

const (
	ExchangeStatusPending   = "pending"
	ExchangeStatusAccepted  = "accepted"
	ExchangeStatusCompleted = "completed"
	ExchangeStatusCancelled = "cancelled"
)

var exchangeTransitions = map[string][]string{
	ExchangeStatusPending:  {ExchangeStatusAccepted, ExchangeStatusCancelled},
	ExchangeStatusAccepted: {ExchangeStatusCompleted, ExchangeStatusCancelled},
}

// CanTransition: pending -> accepted -> completed, отмена из pending и accepted
func CanTransition(from, to string) bool {
	for _, next := range exchangeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (e *SkillExchange) HasParticipant(userID uuid.UUID) bool {
	return e.RequesterID == userID || e.ProviderID == userID
}
