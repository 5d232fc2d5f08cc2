package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternalServer   = errors.New("internal server error")
)

// Доменные ошибки оборачивают базовые, чтобы HTTPStatusFromError работал через errors.Is
var (
	ErrInvalidCredentials      = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrInvalidToken            = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrTokenExpired            = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrAuthDisabled            = fmt.Errorf("authentication is disabled: %w", ErrUnauthorized)
	ErrUserAlreadyExists       = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrUserNotFound            = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrSessionNotFound         = fmt.Errorf("session not found: %w", ErrUnauthorized)
	ErrConversationNotFound    = fmt.Errorf("conversation not found: %w", ErrNotFound)
	ErrSkillNotFound           = fmt.Errorf("skill not found: %w", ErrNotFound)
	ErrExchangeNotFound        = fmt.Errorf("exchange not found: %w", ErrNotFound)
	ErrNotParticipant          = fmt.Errorf("not a participant of the conversation: %w", ErrForbidden)
	ErrNotOwner                = fmt.Errorf("not the owner of the resource: %w", ErrForbidden)
	ErrNotExchangeParticipant  = fmt.Errorf("not a participant of the exchange: %w", ErrForbidden)
	ErrAlreadyRated            = fmt.Errorf("exchange already rated: %w", ErrConflict)
	ErrSelfConversation        = &ValidationError{Field: "participantId", Message: "cannot converse with self"}
	ErrInvalidStatusTransition = &ValidationError{Field: "status", Message: "invalid status transition"}
)

// ValidationError описывает некорректный ввод клиента
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreUnavailable помечает ошибку недоступности хранилища
func StoreUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

type APIError struct {
	Message        string `json:"error"`
	Code           int    `json:"code"`
	Reauthenticate bool   `json:"reauthenticate,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message:        message,
		Code:           code,
		Reauthenticate: code == http.StatusUnauthorized,
	}
}

// FromError строит тело ответа; внутренние ошибки не раскрываются клиенту
func FromError(err error) *APIError {
	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError {
		if code == http.StatusServiceUnavailable {
			return NewAPIError("service temporarily unavailable", code)
		}
		return NewAPIError(ErrInternalServer.Error(), code)
	}
	return NewAPIError(err.Error(), code)
}

func HTTPStatusFromError(err error) int {
	var apiErr *APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
