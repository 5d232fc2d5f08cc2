package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skill_swap/internal/domain"
	"skill_swap/pkg/logger"
)

type fakeConn struct {
	mu       sync.Mutex
	payloads [][]byte
	closed   bool
	broken   bool
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.broken {
		return ErrConnectionClosed
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.payloads))
	copy(out, c.payloads)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newConversation(a, b uuid.UUID) *domain.Conversation {
	return &domain.Conversation{ID: uuid.New(), ParticipantAID: a, ParticipantBID: b, CreatedAt: time.Now()}
}

func newMessage(conv *domain.Conversation, sender uuid.UUID) *domain.Message {
	return &domain.Message{
		ID:             1,
		ConversationID: conv.ID,
		SenderID:       sender,
		Content:        "hi",
		MessageType:    domain.MessageTypeText,
		CreatedAt:      time.Now(),
	}
}

func TestNotifyDeliversOnlyToParticipants(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b, d := uuid.New(), uuid.New(), uuid.New()
	connA, connB, connD := &fakeConn{}, &fakeConn{}, &fakeConn{}

	require.NoError(t, hub.Join(a, connA))
	require.NoError(t, hub.Join(b, connB))
	require.NoError(t, hub.Join(d, connD))

	conv := newConversation(a, b)
	hub.NotifyNewMessage(context.Background(), conv, newMessage(conv, a))

	assert.Len(t, connA.received(), 1)
	assert.Len(t, connB.received(), 1)
	assert.Empty(t, connD.received(), "outsider must not see the conversation")
}

func TestNotifyReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b := uuid.New(), uuid.New()
	tabA1, tabA2, tabB := &fakeConn{}, &fakeConn{}, &fakeConn{}

	require.NoError(t, hub.Join(a, tabA1))
	require.NoError(t, hub.Join(a, tabA2))
	require.NoError(t, hub.Join(b, tabB))
	assert.Equal(t, 2, hub.ConnectionCount(a))

	conv := newConversation(a, b)
	msg := newMessage(conv, b)
	hub.NotifyNewMessage(context.Background(), conv, msg)

	for _, conn := range []*fakeConn{tabA1, tabA2} {
		got := conn.received()
		require.Len(t, got, 1)

		var event NewMessageEvent
		require.NoError(t, json.Unmarshal(got[0], &event))
		assert.Equal(t, FrameTypeNewMessage, event.Type)
		assert.Equal(t, conv.ID, event.ConversationID)
		assert.Equal(t, b, event.Message.SenderID)
		assert.Equal(t, "hi", event.Message.Content)
	}

	// отправитель тоже получает событие в своих вкладках
	assert.Len(t, tabB.received(), 1)
}

func TestBrokenConnectionDoesNotStopFanOut(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b := uuid.New(), uuid.New()
	broken, healthy := &fakeConn{broken: true}, &fakeConn{}

	require.NoError(t, hub.Join(a, broken))
	require.NoError(t, hub.Join(a, healthy))

	delivered := hub.Deliver([]uuid.UUID{a, b}, []byte(`{"type":"new_message"}`))

	assert.Equal(t, 1, delivered)
	assert.Len(t, healthy.received(), 1)
	assert.Empty(t, broken.received())
}

func TestDeliverDeduplicatesRecipients(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a := uuid.New()
	conn := &fakeConn{}
	require.NoError(t, hub.Join(a, conn))

	hub.Deliver([]uuid.UUID{a, a}, []byte("x"))
	assert.Len(t, conn.received(), 1)
}

func TestLeaveRemovesEmptyUserEntry(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a := uuid.New()
	first, second := &fakeConn{}, &fakeConn{}

	require.NoError(t, hub.Join(a, first))
	require.NoError(t, hub.Join(a, second))

	hub.Leave(first)
	assert.Equal(t, 1, hub.ConnectionCount(a))
	assert.Equal(t, 1, hub.UserCount())

	hub.Leave(second)
	assert.Equal(t, 0, hub.ConnectionCount(a))
	assert.Equal(t, 0, hub.UserCount())

	// повторный leave и неизвестное соединение безопасны
	hub.Leave(second)
	hub.Leave(&fakeConn{})
	assert.Equal(t, 0, hub.UserCount())
}

func TestJoinMovesConnectionBetweenUsers(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b := uuid.New(), uuid.New()
	conn := &fakeConn{}

	require.NoError(t, hub.Join(a, conn))
	require.NoError(t, hub.Join(b, conn))

	assert.Equal(t, 0, hub.ConnectionCount(a))
	assert.Equal(t, 1, hub.ConnectionCount(b))
	assert.Equal(t, 1, hub.UserCount())
}

func TestConcurrentJoinLeaveNotify(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b := uuid.New(), uuid.New()
	conv := newConversation(a, b)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			user := a
			if i%2 == 0 {
				user = b
			}
			conn := &fakeConn{}
			_ = hub.Join(user, conn)
			hub.Leave(conn)
		}(i)
		go func() {
			defer wg.Done()
			hub.NotifyNewMessage(context.Background(), conv, newMessage(conv, a))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.UserCount())
}

func TestShutdownClosesConnections(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a := uuid.New()
	conn := &fakeConn{}
	require.NoError(t, hub.Join(a, conn))

	hub.Shutdown()

	assert.True(t, conn.isClosed())
	assert.Equal(t, 0, hub.UserCount())
	assert.True(t, errors.Is(hub.Join(a, &fakeConn{}), ErrHubClosed))
}
