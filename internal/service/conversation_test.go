package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skill_swap/pkg/errors"
)

func TestGetOrCreateIsSymmetric(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	first, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, first.ParticipantAID)
	assert.Equal(t, bob.ID, first.ParticipantBID)

	second, err := services.Conversation.GetOrCreate(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.ConversationCount())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	first, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	again, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, first.LastActivityAt.Equal(again.LastActivityAt), "lookup must not touch last activity")
	assert.Equal(t, 1, store.ConversationCount())
}

func TestGetOrCreateConcurrentFirstContact(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	const workers = 32
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := services.Conversation.GetOrCreate(ctx, a, b)
			errs[i] = err
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, store.ConversationCount())
}

func TestGetOrCreateRejectsSelf(t *testing.T) {
	services, store, _ := newTestServices(t)
	alice := store.AddUser("Alice", "A")

	_, err := services.Conversation.GetOrCreate(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, store.ConversationCount())
}

func TestGetOrCreateUnknownParticipant(t *testing.T) {
	services, store, _ := newTestServices(t)
	alice := store.AddUser("Alice", "A")

	_, err := services.Conversation.GetOrCreate(context.Background(), alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Equal(t, 0, store.ConversationCount())
}

func TestGetOrCreateStoreUnavailable(t *testing.T) {
	services, store, _ := newTestServices(t)
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	store.SetUnavailable(true)
	_, err := services.Conversation.GetOrCreate(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestGetConversationRequiresParticipant(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	carol := store.AddUser("Carol", "C")

	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = services.Conversation.Get(ctx, conv.ID, carol.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	got, err := services.Conversation.Get(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}
