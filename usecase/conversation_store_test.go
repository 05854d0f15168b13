package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const greeting = "Hi! Ask me anything."

// fakeExchanger returns canned replies and records what it was sent.
type fakeExchanger struct {
	mu      sync.Mutex
	replies []string
	sent    [][]domain.Message
}

func (f *fakeExchanger) Send(ctx context.Context, history []domain.Message) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, history)
	if len(f.replies) == 0 {
		return "ok"
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply
}

func (f *fakeExchanger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// blockingExchanger holds every Send until a reply is pushed on release.
type blockingExchanger struct {
	started chan []domain.Message
	release chan string
}

func newBlockingExchanger() *blockingExchanger {
	return &blockingExchanger{
		started: make(chan []domain.Message, 1),
		release: make(chan string),
	}
}

func (b *blockingExchanger) Send(ctx context.Context, history []domain.Message) string {
	b.started <- history
	return <-b.release
}

func TestConversationStore_SeedsGreeting(t *testing.T) {
	store := NewConversationStore(&fakeExchanger{}, greeting)

	assert.Equal(t, []domain.Message{{Role: domain.AssistantRole, Content: greeting}}, store.History())
	assert.False(t, store.Pending())
	assert.NotEmpty(t, store.SessionID())
}

func TestConversationStore_Submit_RoundTrip(t *testing.T) {
	ex := &fakeExchanger{replies: []string{"X"}}
	store := NewConversationStore(ex, greeting)

	accepted := store.Submit(context.Background(), "  What is TIN100?  ")

	require.True(t, accepted)
	history := store.History()
	require.Len(t, history, 3)
	assert.Equal(t, domain.Message{Role: domain.UserRole, Content: "What is TIN100?"}, history[1])
	assert.Equal(t, domain.Message{Role: domain.AssistantRole, Content: "X"}, history[2])
	assert.False(t, store.Pending())
}

func TestConversationStore_Submit_SendsFullHistory(t *testing.T) {
	ex := &fakeExchanger{replies: []string{"first", "second"}}
	store := NewConversationStore(ex, greeting)

	store.Submit(context.Background(), "one")
	store.Submit(context.Background(), "two")

	require.Equal(t, 2, ex.calls())
	assert.Equal(t, []domain.Message{
		{Role: domain.AssistantRole, Content: greeting},
		{Role: domain.UserRole, Content: "one"},
	}, ex.sent[0])
	assert.Equal(t, []domain.Message{
		{Role: domain.AssistantRole, Content: greeting},
		{Role: domain.UserRole, Content: "one"},
		{Role: domain.AssistantRole, Content: "first"},
		{Role: domain.UserRole, Content: "two"},
	}, ex.sent[1])
}

func TestConversationStore_Submit_BlankInputIsNoOp(t *testing.T) {
	ex := &fakeExchanger{}
	var changes atomic.Int32
	store := NewConversationStore(ex, greeting, WithObserver(func() { changes.Add(1) }))

	for _, text := range []string{"", "   ", "\n\t"} {
		assert.False(t, store.Submit(context.Background(), text))
	}

	assert.Len(t, store.History(), 1)
	assert.False(t, store.Pending())
	assert.Zero(t, ex.calls())
	assert.Zero(t, changes.Load())
}

func TestConversationStore_Submit_RejectedWhilePending(t *testing.T) {
	ex := newBlockingExchanger()
	store := NewConversationStore(ex, greeting)

	done := make(chan bool)
	go func() { done <- store.Submit(context.Background(), "first") }()

	select {
	case <-ex.started:
	case <-time.After(time.Second):
		t.Fatal("exchange did not start")
	}
	require.True(t, store.Pending())
	before := store.History()

	assert.False(t, store.Submit(context.Background(), "second"))
	assert.Equal(t, before, store.History())
	assert.True(t, store.Pending())
	assert.Empty(t, ex.started, "no second request may be dispatched")

	ex.release <- "reply"
	assert.True(t, <-done)

	history := store.History()
	require.Len(t, history, 3)
	assert.Equal(t, "reply", history[2].Content)
	assert.False(t, store.Pending())
}

func TestConversationStore_Submit_ConcurrentCallersDispatchOnce(t *testing.T) {
	ex := newBlockingExchanger()
	store := NewConversationStore(ex, greeting)

	const callers = 8
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		go func() { results <- store.Submit(context.Background(), "hello") }()
	}

	<-ex.started
	// every caller except the accepted one returns without blocking
	for i := 0; i < callers-1; i++ {
		assert.False(t, <-results)
	}
	ex.release <- "reply"
	assert.True(t, <-results)

	assert.Len(t, store.History(), 3)
}

func TestConversationStore_AppendOnly(t *testing.T) {
	ex := &fakeExchanger{replies: []string{"a", "b", "c"}}
	store := NewConversationStore(ex, greeting)

	prev := store.History()
	for _, text := range []string{"one", "", "two", "   ", "three"} {
		store.Submit(context.Background(), text)
		cur := store.History()
		require.GreaterOrEqual(t, len(cur), len(prev))
		assert.Equal(t, prev, cur[:len(prev)], "existing entries must not change")
		prev = cur
	}
	assert.Len(t, prev, 7)
}

func TestConversationStore_HistoryIsACopy(t *testing.T) {
	store := NewConversationStore(&fakeExchanger{}, greeting)

	history := store.History()
	history[0].Content = "tampered"

	assert.Equal(t, greeting, store.History()[0].Content)
}

func TestConversationStore_ObserverSeesPendingThenSettled(t *testing.T) {
	var store *ConversationStore
	var seen []bool
	store = NewConversationStore(&fakeExchanger{}, greeting, WithObserver(func() {
		seen = append(seen, store.Pending())
	}))

	store.Submit(context.Background(), "hello")

	assert.Equal(t, []bool{true, false}, seen)
}
