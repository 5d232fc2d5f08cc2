package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("content", "must not be empty"), http.StatusBadRequest},
		{"self conversation", ErrSelfConversation, http.StatusBadRequest},
		{"unauthenticated", ErrInvalidToken, http.StatusUnauthorized},
		{"not participant", ErrNotParticipant, http.StatusForbidden},
		{"wrapped not found", fmt.Errorf("load: %w", ErrConversationNotFound), http.StatusNotFound},
		{"duplicate user", ErrUserAlreadyExists, http.StatusConflict},
		{"store down", StoreUnavailable(errors.New("dial tcp: connection refused")), http.StatusServiceUnavailable},
		{"api error", NewAPIError("slow down", http.StatusTooManyRequests), http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusFromError(tc.err))
		})
	}
}

func TestFromErrorHidesInternalDetails(t *testing.T) {
	apiErr := FromError(errors.New("pq: relation users does not exist"))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.False(t, apiErr.Reauthenticate)

	apiErr = FromError(StoreUnavailable(errors.New("timeout")))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Code)
	assert.NotContains(t, apiErr.Message, "timeout")
}

func TestFromErrorAsksToReauthenticate(t *testing.T) {
	apiErr := FromError(ErrTokenExpired)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
	assert.True(t, apiErr.Reauthenticate)
	assert.Contains(t, apiErr.Message, "token expired")
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("content", "must not be empty")
	assert.Equal(t, "content: must not be empty", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "content", vErr.Field)
}
