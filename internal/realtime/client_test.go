package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startClientServer(t *testing.T, onClient func(*Client)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(ws, 4)
		client.Start()
		onClient(client)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClientWritesQueuedPayloads(t *testing.T) {
	conn := startClientServer(t, func(c *Client) {
		_ = c.Send([]byte(`{"type":"joined"}`))
		_ = c.Send([]byte(`{"type":"new_message"}`))
	})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"joined"}`, string(first))

	_, second, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"new_message"}`, string(second))
}

func TestClientSendAfterCloseIsDropped(t *testing.T) {
	result := make(chan error, 1)
	conn := startClientServer(t, func(c *Client) {
		c.Close()
		result <- c.Send([]byte("late"))
	})

	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrConnectionClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server handler did not run")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestClientDropsWhenBufferFull(t *testing.T) {
	ws := &websocket.Conn{}
	client := NewClient(ws, 1)

	// цикл записи не запущен, буфер на одно сообщение
	require.NoError(t, client.Send([]byte("one")))
	assert.ErrorIs(t, client.Send([]byte("two")), ErrSendBufferFull)
}
