package domain

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"eventTime"`
	ActorUserID *uuid.UUID             `json:"actorUserId,omitempty"`
	EventType   string                 `json:"eventType"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	EventTypeUserRegistered        = "USER_REGISTERED"
	EventTypeUserProvisioned       = "USER_PROVISIONED"
	EventTypeExchangeProposed      = "EXCHANGE_PROPOSED"
	EventTypeExchangeStatusChanged = "EXCHANGE_STATUS_CHANGED"
	EventTypeRatingCreated         = "RATING_CREATED"
)
