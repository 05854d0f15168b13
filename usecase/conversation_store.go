package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

// ConversationStore owns one session's history and its in-flight flag. It is
// the only writer of the history, and at most one exchange runs at a time.
type ConversationStore struct {
	exchanger domain.Exchanger
	sessionID string
	onChange  func()

	mu      sync.Mutex
	history []domain.Message
	pending bool
}

type StoreOption func(*ConversationStore)

// WithObserver registers fn to be called after every state change, outside the
// store's lock.
func WithObserver(fn func()) StoreOption {
	return func(s *ConversationStore) { s.onChange = fn }
}

// NewConversationStore seeds the history with a single assistant greeting.
func NewConversationStore(exchanger domain.Exchanger, greeting string, opts ...StoreOption) *ConversationStore {
	s := &ConversationStore{
		exchanger: exchanger,
		sessionID: uuid.NewString(),
		history: []domain.Message{
			{Role: domain.AssistantRole, Content: greeting},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit appends a user message and blocks until the assistant's reply has
// been appended. It reports false without touching state when text is blank
// or another exchange is still pending.
func (s *ConversationStore) Submit(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		log.WithCtx(s.context(ctx)).Debug("Submit rejected, exchange in flight")
		return false
	}
	s.history = append(s.history, domain.Message{Role: domain.UserRole, Content: text})
	s.pending = true
	snapshot := s.snapshot()
	s.mu.Unlock()
	s.notify()

	ctx = s.context(ctx)
	log.WithCtx(ctx).Debug("Submitting message", zap.Int("turns", len(snapshot)))
	content := s.exchanger.Send(ctx, snapshot)

	s.mu.Lock()
	s.history = append(s.history, domain.Message{Role: domain.AssistantRole, Content: content})
	s.pending = false
	s.mu.Unlock()
	s.notify()

	return true
}

// History returns a copy of the conversation so far.
func (s *ConversationStore) History() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *ConversationStore) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *ConversationStore) SessionID() string {
	return s.sessionID
}

// snapshot must be called with mu held.
func (s *ConversationStore) snapshot() []domain.Message {
	out := make([]domain.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *ConversationStore) context(ctx context.Context) context.Context {
	return log.WithSessionID(ctx, s.sessionID)
}

func (s *ConversationStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
