package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
)

func TestSendMessageStoresAndNotifies(t *testing.T) {
	services, store, notifier := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := services.Chat.SendMessage(ctx, SendMessageInput{
		ConversationID: conv.ID,
		SenderID:       alice.ID,
		Content:        "  hi there  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "hi there", msg.Content)
	assert.Equal(t, domain.MessageTypeText, msg.MessageType)
	assert.NotZero(t, msg.ID)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, "Alice", msg.Sender.FirstName)

	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, conv.ID, events[0].conv.ID)
	assert.Equal(t, msg.ID, events[0].msg.ID)
	assert.True(t, events[0].conv.LastActivityAt.Equal(msg.CreatedAt))

	summaries, err := services.Conversation.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].LastActivityAt.Equal(msg.CreatedAt))
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, msg.ID, summaries[0].LastMessage.ID)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	services, store, notifier := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: conv.ID, SenderID: alice.ID, Content: content})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "content", vErr.Field)
	}

	assert.Equal(t, 0, store.MessageCount())
	assert.Empty(t, notifier.all())
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	services, store, notifier := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	mallory := store.AddUser("Mallory", "M")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: conv.ID, SenderID: mallory.ID, Content: "let me in"})
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.Equal(t, 0, store.MessageCount())
	assert.Empty(t, notifier.all())
}

func TestSendMessageValidatesTypeAndConversation(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: conv.ID, SenderID: alice.ID, Content: "x", MessageType: "image"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: uuid.New(), SenderID: alice.ID, Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)

	assert.Equal(t, 0, store.MessageCount())
}

func TestSendMessageStoreUnavailable(t *testing.T) {
	services, store, notifier := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	store.SetUnavailable(true)
	_, err = services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: conv.ID, SenderID: alice.ID, Content: "lost?"})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Empty(t, notifier.all())
}

func TestGetMessagesStableOrderWithEqualTimestamps(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	frozen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return frozen }

	contents := []string{"one", "two", "three", "four"}
	for i, content := range contents {
		sender := alice.ID
		if i%2 == 1 {
			sender = bob.ID
		}
		_, err := services.Chat.SendMessage(ctx, SendMessageInput{ConversationID: conv.ID, SenderID: sender, Content: content})
		require.NoError(t, err)
	}

	for attempt := 0; attempt < 3; attempt++ {
		messages, err := services.Chat.GetMessages(ctx, conv.ID, bob.ID)
		require.NoError(t, err)
		require.Len(t, messages, len(contents))
		for i, msg := range messages {
			assert.Equal(t, contents[i], msg.Content)
			require.NotNil(t, msg.Sender)
		}
		assert.Equal(t, "Alice", messages[0].Sender.FirstName)
		assert.Equal(t, "Bob", messages[1].Sender.FirstName)
	}
}

func TestGetMessagesRequiresParticipant(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	carol := store.AddUser("Carol", "C")
	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = services.Chat.GetMessages(ctx, conv.ID, carol.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = services.Chat.GetMessages(ctx, uuid.New(), alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// История читается целиком: пагинации нет
func TestGetMessagesReturnsFullHistoryInOneRead(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	const total = 500
	for i := 0; i < total; i++ {
		sender := alice.ID
		if i%2 == 1 {
			sender = bob.ID
		}
		_, err := services.Chat.SendMessage(ctx, SendMessageInput{
			ConversationID: conv.ID,
			SenderID:       sender,
			Content:        fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	messages, err := services.Chat.GetMessages(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, total)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
		if i > 0 {
			assert.Greater(t, msg.ID, messages[i-1].ID)
		}
	}
}
