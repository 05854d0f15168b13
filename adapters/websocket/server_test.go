package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/cocoa-fruit/studychat/adapters/message_broker"
	"github.com/satriahrh/cocoa-fruit/studychat/domain"
)

func startFeed(t *testing.T) (*Server, *message_broker.ChannelMessageBroker, string) {
	t.Helper()

	broker := message_broker.NewChannelMessageBroker()
	server := NewServer(broker)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, server.Run(ctx))

	e := echo.New()
	e.GET("/ws", server.Handler)
	srv := httptest.NewServer(e)

	t.Cleanup(func() {
		cancel()
		srv.Close()
		broker.Close()
	})

	return server, broker, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServer_BroadcastsExchangeEvents(t *testing.T) {
	server, broker, url := startFeed(t)

	first := dial(t, url)
	second := dial(t, url)
	require.Eventually(t, func() bool { return server.GetHub().ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	payload := []byte(`{"conversation":"abc","turns":2,"success":true}`)
	require.NoError(t, broker.Publish(context.Background(), domain.ExchangeTopic, "abc", payload))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(msg))
	}
}

func TestServer_UnregistersOnDisconnect(t *testing.T) {
	server, _, url := startFeed(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return server.GetHub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return server.GetHub().ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
