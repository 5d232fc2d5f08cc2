package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
)

func TestRatingRequiresCompletedExchange(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	exchange, err := services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID})
	require.NoError(t, err)

	_, err = services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: bob.ID, ExchangeID: &exchange.ID, Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, bob.ID, domain.ExchangeStatusAccepted)
	require.NoError(t, err)
	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, bob.ID, domain.ExchangeStatusCompleted)
	require.NoError(t, err)

	review := "  great teacher "
	rating, err := services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: bob.ID, ExchangeID: &exchange.ID, Rating: 5, Review: &review})
	require.NoError(t, err)
	require.NotNil(t, rating.Review)
	assert.Equal(t, "great teacher", *rating.Review)

	_, err = services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: bob.ID, ExchangeID: &exchange.ID, Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRated)

	profile, err := services.User.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, profile.AvgRating)
	assert.Equal(t, 1, profile.TotalExchanges)

	ratings, err := services.Rating.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	require.NotNil(t, ratings[0].Rater)
	assert.Equal(t, "Alice", ratings[0].Rater.FirstName)
	assert.Contains(t, store.AuditEvents(), domain.EventTypeRatingCreated)
}

func TestRatingValidation(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	for _, value := range []int{0, 6, -1} {
		_, err := services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: bob.ID, Rating: value})
		assert.ErrorIs(t, err, apperrors.ErrValidation, "rating %d", value)
	}

	_, err := services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: alice.ID, Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = services.Rating.Create(ctx, alice.ID, CreateRatingInput{RatedUserID: bob.ID, Rating: 3})
	assert.NoError(t, err)
}
