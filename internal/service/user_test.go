package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
)

func strPtr(s string) *string { return &s }

func TestUpdateMe(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")

	updated, err := services.User.UpdateMe(ctx, alice.ID, UpdateProfileInput{
		FirstName: strPtr(" Alicia "),
		Bio:       strPtr("Teaches guitar"),
		Title:     strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "A", updated.LastName)
	require.NotNil(t, updated.Bio)
	assert.Nil(t, updated.Title)

	_, err = services.User.UpdateMe(ctx, alice.ID, UpdateProfileInput{FirstName: strPtr("")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	me, err := services.User.GetMe(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", me.FirstName)
}

func TestProvisionCreatesUserOnce(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()

	now := time.Now()
	external := &domain.User{
		ID:         uuid.New(),
		Email:      "ext@example.com",
		FirstName:  "Ext",
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	first, err := services.User.Provision(ctx, external)
	require.NoError(t, err)
	assert.Equal(t, external.ID, first.ID)

	second, err := services.User.Provision(ctx, external)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	provisioned := 0
	for _, event := range store.AuditEvents() {
		if event == domain.EventTypeUserProvisioned {
			provisioned++
		}
	}
	assert.Equal(t, 1, provisioned)
}

func TestGetProfileUnknownUser(t *testing.T) {
	services, _, _ := newTestServices(t)

	_, err := services.User.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
