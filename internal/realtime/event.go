package realtime

import (
	"encoding/json"

	"github.com/google/uuid"

	"skill_swap/internal/domain"
)

const (
	FrameTypeJoin       = "join"
	FrameTypeJoined     = "joined"
	FrameTypeError      = "error"
	FrameTypeNewMessage = "new_message"
)

// InboundFrame - сообщение клиента по живому каналу
type InboundFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}

type AckFrame struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"userId"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type NewMessageEvent struct {
	Type           string          `json:"type"`
	ConversationID uuid.UUID       `json:"conversationId"`
	Message        *domain.Message `json:"message"`
}

func EncodeNewMessage(msg *domain.Message) ([]byte, error) {
	return json.Marshal(NewMessageEvent{
		Type:           FrameTypeNewMessage,
		ConversationID: msg.ConversationID,
		Message:        msg,
	})
}
