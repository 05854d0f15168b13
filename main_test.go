package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/cocoa-fruit/studychat/adapters/exchange"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/hasher"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/llm"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/message_broker"
	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
)

type failingReplier struct{}

func (failingReplier) Reply(ctx context.Context, history []domain.Message) (string, error) {
	return "", errors.New("boom")
}

func startServer(t *testing.T, replier domain.Replier) (string, *message_broker.ChannelMessageBroker) {
	t.Helper()
	broker := message_broker.NewChannelMessageBroker()
	svc := usecase.NewChatService(replier, broker, hasher.NewFingerprint())

	cfg := config.Default().Server
	cfg.RateLimit = 0
	srv := httptest.NewServer(newServer(cfg, svc, nil))
	t.Cleanup(func() {
		srv.Close()
		broker.Close()
	})
	return srv.URL + "/api/chat", broker
}

func newStore(endpoint string) *usecase.ConversationStore {
	client := exchange.NewClient(endpoint, exchange.WithTexts(exchange.Texts{
		Fallback:   config.DefaultFallback,
		EmptyReply: config.DefaultEmptyReply,
	}))
	return usecase.NewConversationStore(client, config.DefaultGreeting)
}

func TestEndToEnd_EchoConversation(t *testing.T) {
	endpoint, broker := startServer(t, llm.NewEchoReplier())
	events, err := broker.Subscribe(context.Background(), domain.ExchangeTopic, "")
	require.NoError(t, err)
	store := newStore(endpoint)

	require.True(t, store.Submit(context.Background(), "hello"))
	require.True(t, store.Submit(context.Background(), "what is TIN100?"))

	history := store.History()
	require.Len(t, history, 5)
	assert.Equal(t, domain.Message{Role: domain.AssistantRole, Content: config.DefaultGreeting}, history[0])
	assert.Equal(t, domain.Message{Role: domain.AssistantRole, Content: "You said: hello"}, history[2])
	assert.Equal(t, domain.Message{Role: domain.AssistantRole, Content: "You said: what is TIN100?"}, history[4])
	assert.False(t, store.Pending())

	first, second := <-events, <-events
	assert.Equal(t, first.RoutingKey, second.RoutingKey, "one session keeps one fingerprint")
}

func TestEndToEnd_ServerErrorShowsFallback(t *testing.T) {
	endpoint, _ := startServer(t, failingReplier{})
	store := newStore(endpoint)

	require.True(t, store.Submit(context.Background(), "hello"))

	history := store.History()
	require.Len(t, history, 3)
	assert.Equal(t, config.DefaultFallback, history[2].Content)
	for _, msg := range history {
		assert.NotContains(t, msg.Content, "boom")
	}
}

func TestNewReplier(t *testing.T) {
	replier, err := newReplier(context.Background(), config.ReplierConfig{Provider: "echo"})
	require.NoError(t, err)
	assert.IsType(t, llm.EchoReplier{}, replier)

	_, err = newReplier(context.Background(), config.ReplierConfig{Provider: "oracle"})
	assert.Error(t, err)
}

func TestServe_RejectsUnknownReplier(t *testing.T) {
	t.Setenv("CHAT_REPLIER", "oracle")

	err := serve(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown replier.provider")
}
