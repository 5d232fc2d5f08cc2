package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skill_swap/internal/domain"
	"skill_swap/internal/service"
	apperrors "skill_swap/pkg/errors"
)

// request - тело запроса, которое проверяет себя после декодирования
type request interface {
	Validate() error
}

func bindJSON(c *gin.Context, req request) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.NewValidationError("body", "invalid JSON body")
	}
	return req.Validate()
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name, "must be a valid UUID")
	}
	return id, nil
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(field, "must be a valid UUID")
	}
	return id, nil
}

func parseOptionalUUID(field string, value *string) (*uuid.UUID, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := parseUUID(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *RegisterRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return apperrors.NewValidationError("email", "is required")
	case r.Password == "":
		return apperrors.NewValidationError("password", "is required")
	case strings.TrimSpace(r.FirstName) == "":
		return apperrors.NewValidationError("firstName", "is required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperrors.NewValidationError("email", "email and password are required")
	}
	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshTokenRequest) Validate() error {
	if r.RefreshToken == "" {
		return apperrors.NewValidationError("refreshToken", "is required")
	}
	return nil
}

type UpdateProfileRequest struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Bio             *string `json:"bio"`
	Title           *string `json:"title"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

func (r *UpdateProfileRequest) Validate() error { return nil }

func (r *UpdateProfileRequest) input() service.UpdateProfileInput {
	return service.UpdateProfileInput{
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Bio:             r.Bio,
		Title:           r.Title,
		ProfileImageURL: r.ProfileImageURL,
	}
}

type SkillRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Level       string   `json:"level"`
	Seeking     *string  `json:"seeking"`
}

func (r *SkillRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.NewValidationError("title", "is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return apperrors.NewValidationError("category", "is required")
	}
	return nil
}

func (r *SkillRequest) input() service.SkillInput {
	return service.SkillInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Tags:        r.Tags,
		Level:       r.Level,
		Seeking:     r.Seeking,
	}
}

type CreateConversationRequest struct {
	ParticipantID string `json:"participantId"`

	participantID uuid.UUID
}

func (r *CreateConversationRequest) Validate() error {
	if strings.TrimSpace(r.ParticipantID) == "" {
		return apperrors.NewValidationError("participantId", "is required")
	}
	id, err := parseUUID("participantId", r.ParticipantID)
	if err != nil {
		return err
	}
	r.participantID = id
	return nil
}

type SendMessageRequest struct {
	Content     string                 `json:"content"`
	MessageType string                 `json:"messageType"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func (r *SendMessageRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return apperrors.NewValidationError("content", "must not be empty")
	}
	// exchange_proposal и system пишет только сервер
	if r.MessageType != "" && r.MessageType != domain.MessageTypeText {
		return apperrors.NewValidationError("messageType", "clients may only post text messages")
	}
	return nil
}

type ProposeExchangeRequest struct {
	ProviderID       string     `json:"providerId"`
	RequesterSkillID *string    `json:"requesterSkillId"`
	ProviderSkillID  *string    `json:"providerSkillId"`
	ScheduledAt      *time.Time `json:"scheduledAt"`
	Notes            *string    `json:"notes"`

	parsed service.ProposeExchangeInput
}

func (r *ProposeExchangeRequest) Validate() error {
	providerID, err := parseUUID("providerId", r.ProviderID)
	if err != nil {
		return err
	}
	requesterSkillID, err := parseOptionalUUID("requesterSkillId", r.RequesterSkillID)
	if err != nil {
		return err
	}
	providerSkillID, err := parseOptionalUUID("providerSkillId", r.ProviderSkillID)
	if err != nil {
		return err
	}
	if r.Notes != nil && len(*r.Notes) > domain.MaxExchangeNotesLength {
		return apperrors.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", domain.MaxExchangeNotesLength))
	}

	r.parsed = service.ProposeExchangeInput{
		ProviderID:       providerID,
		RequesterSkillID: requesterSkillID,
		ProviderSkillID:  providerSkillID,
		ScheduledAt:      r.ScheduledAt,
		Notes:            r.Notes,
	}
	return nil
}

type UpdateExchangeStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateExchangeStatusRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return apperrors.NewValidationError("status", "is required")
	}
	return nil
}

type CreateRatingRequest struct {
	RatedUserID string  `json:"ratedUserId"`
	ExchangeID  *string `json:"exchangeId"`
	Rating      int     `json:"rating"`
	Review      *string `json:"review"`

	parsed service.CreateRatingInput
}

func (r *CreateRatingRequest) Validate() error {
	ratedUserID, err := parseUUID("ratedUserId", r.RatedUserID)
	if err != nil {
		return err
	}
	exchangeID, err := parseOptionalUUID("exchangeId", r.ExchangeID)
	if err != nil {
		return err
	}
	if r.Rating < domain.MinRating || r.Rating > domain.MaxRating {
		return apperrors.NewValidationError("rating", "must be between 1 and 5")
	}

	r.parsed = service.CreateRatingInput{
		RatedUserID: ratedUserID,
		ExchangeID:  exchangeID,
		Rating:      r.Rating,
		Review:      r.Review,
	}
	return nil
}
