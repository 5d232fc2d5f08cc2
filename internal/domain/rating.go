package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRating struct {
	ID          uuid.UUID      `json:"id"`
	RaterID     uuid.UUID      `json:"raterId"`
	RatedUserID uuid.UUID      `json:"ratedUserId"`
	ExchangeID  *uuid.UUID     `json:"exchangeId,omitempty"`
	Rating      int            `json:"rating"`
	Review      *string        `json:"review,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	Rater       *PublicProfile `json:"rater,omitempty"`
}

const (
	MinRating = 1
	MaxRating = 5
)
