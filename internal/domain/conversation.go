package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation - единственная переписка для неупорядоченной пары пользователей
type Conversation struct {
	ID             uuid.UUID `json:"id"`
	ParticipantAID uuid.UUID `json:"participantA"`
	ParticipantBID uuid.UUID `json:"participantB"`
	LastActivityAt time.Time `json:"lastActivity"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantAID == userID || c.ParticipantBID == userID
}

func (c *Conversation) Participants() []uuid.UUID {
	return []uuid.UUID{c.ParticipantAID, c.ParticipantBID}
}

// Counterpart возвращает второго участника переписки
func (c *Conversation) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.ParticipantAID == userID {
		return c.ParticipantBID
	}
	return c.ParticipantAID
}

// ConversationSummary - элемент списка переписок пользователя
type ConversationSummary struct {
	Conversation
	ParticipantA PublicProfile `json:"participantAProfile"`
	ParticipantB PublicProfile `json:"participantBProfile"`
	LastMessage  *Message      `json:"lastMessage,omitempty"`
}

type Message struct {
	ID             int64                  `json:"id"`
	ConversationID uuid.UUID              `json:"conversationId"`
	SenderID       uuid.UUID              `json:"senderId"`
	Content        string                 `json:"content"`
	MessageType    string                 `json:"messageType"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	Sender         *PublicProfile         `json:"sender,omitempty"`
}

const (
	MessageTypeText             = "text"
	MessageTypeExchangeProposal = "exchange_proposal"
	MessageTypeSystem           = "system"
)

func IsValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeExchangeProposal, MessageTypeSystem:
		return true
	}
	return false
}
