package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	apperrors "skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

func TestProposeExchangePostsProposalMessage(t *testing.T) {
	services, store, notifier := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	guitar, err := services.Skill.Create(ctx, alice.ID, SkillInput{Title: "Guitar", Category: "music"})
	require.NoError(t, err)
	spanish, err := services.Skill.Create(ctx, bob.ID, SkillInput{Title: "Spanish", Category: "languages", Level: "expert"})
	require.NoError(t, err)

	exchange, err := services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{
		ProviderID:       bob.ID,
		RequesterSkillID: &guitar.ID,
		ProviderSkillID:  &spanish.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExchangeStatusPending, exchange.Status)

	conv, err := services.Conversation.GetOrCreate(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	messages, err := services.Chat.GetMessages(ctx, conv.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, domain.MessageTypeExchangeProposal, messages[0].MessageType)
	assert.Equal(t, exchange.ID.String(), messages[0].Metadata["exchangeId"])
	assert.Contains(t, messages[0].Content, "Guitar")
	assert.Contains(t, messages[0].Content, "Spanish")

	assert.Len(t, notifier.all(), 1)
	assert.Contains(t, store.AuditEvents(), domain.EventTypeExchangeProposed)
}

func TestProposeExchangeValidation(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	bobSkill, err := services.Skill.Create(ctx, bob.ID, SkillInput{Title: "Chess", Category: "games"})
	require.NoError(t, err)

	_, err = services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: alice.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// чужой навык в качестве своего предложения
	_, err = services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID, RequesterSkillID: &bobSkill.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Equal(t, 0, store.MessageCount())
}

func TestExchangeStatusFlow(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")
	carol := store.AddUser("Carol", "C")

	exchange, err := services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID})
	require.NoError(t, err)

	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, alice.ID, domain.ExchangeStatusAccepted)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "requester cannot accept")

	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, carol.ID, domain.ExchangeStatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrNotExchangeParticipant)

	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, bob.ID, domain.ExchangeStatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrValidation, "pending cannot jump to completed")

	accepted, err := services.Exchange.UpdateStatus(ctx, exchange.ID, bob.ID, domain.ExchangeStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.ExchangeStatusAccepted, accepted.Status)

	completed, err := services.Exchange.UpdateStatus(ctx, exchange.ID, alice.ID, domain.ExchangeStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	_, err = services.Exchange.UpdateStatus(ctx, exchange.ID, alice.ID, domain.ExchangeStatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	conv, err := services.Conversation.GetOrCreate(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	messages, err := services.Chat.GetMessages(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, domain.MessageTypeSystem, messages[1].MessageType)
	assert.Equal(t, domain.MessageTypeSystem, messages[2].MessageType)

	exchanges, err := services.Exchange.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, domain.ExchangeStatusCompleted, exchanges[0].Status)
}

func TestProposeExchangeRejectsOversizedNotesWithoutStoring(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	notes := strings.Repeat("x", 10001)
	_, err := services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID, Notes: &notes})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	exchanges, err := services.Exchange.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, exchanges, 0)
	assert.Equal(t, 0, store.MessageCount())

	notes = strings.Repeat("x", domain.MaxExchangeNotesLength)
	_, err = services.Exchange.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 1, store.ExchangeCount())
}

type failingChat struct {
	ChatService
	err error
}

func (f failingChat) SendMessage(context.Context, SendMessageInput) (*domain.Message, error) {
	return nil, f.err
}

func TestProposeExchangeDiscardedWhenProposalNotPosted(t *testing.T) {
	services, store, _ := newTestServices(t)
	ctx := context.Background()
	alice := store.AddUser("Alice", "A")
	bob := store.AddUser("Bob", "B")

	repos := store.Repositories()
	sendErr := apperrors.StoreUnavailable(errors.New("connection reset"))
	exchanges := NewExchangeService(
		repos.Exchange, repos.User, repos.Skill,
		services.Conversation, failingChat{ChatService: services.Chat, err: sendErr},
		services.Audit, logger.NewNop(),
	)

	_, err := exchanges.Propose(ctx, alice.ID, ProposeExchangeInput{ProviderID: bob.ID})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	listed, err := exchanges.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 0)
	assert.NotContains(t, store.AuditEvents(), domain.EventTypeExchangeProposed)
}
