package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

// ChatService answers a conversation on behalf of the reply endpoint and
// reports every exchange to the broker.
type ChatService struct {
	replier domain.Replier
	broker  domain.MessageBroker
	hasher  domain.Hasher
}

func NewChatService(replier domain.Replier, broker domain.MessageBroker, hasher domain.Hasher) *ChatService {
	return &ChatService{replier: replier, broker: broker, hasher: hasher}
}

// Reply validates history and asks the replier for the next assistant turn.
// Invalid histories fail with domain.ErrInvalidConversation.
func (s *ChatService) Reply(ctx context.Context, history []domain.Message) (string, error) {
	if err := domain.ValidateConversation(history); err != nil {
		return "", err
	}

	startTime := time.Now()
	reply, err := s.replier.Reply(ctx, history)
	if err != nil {
		err = fmt.Errorf("generating reply: %w", err)
	}
	s.publish(ctx, history, err, time.Since(startTime))
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (s *ChatService) publish(ctx context.Context, history []domain.Message, replyErr error, elapsed time.Duration) {
	if s.broker == nil {
		return
	}

	event := domain.ExchangeEvent{
		Conversation: s.fingerprint(history),
		RequestID:    log.RequestID(ctx),
		Turns:        len(history),
		Success:      replyErr == nil,
		DurationMs:   elapsed.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
	if replyErr != nil {
		event.Error = replyErr.Error()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.WithCtx(ctx).Error("Failed to marshal exchange event", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, domain.ExchangeTopic, event.Conversation, payload); err != nil {
		log.WithCtx(ctx).Warn("Failed to publish exchange event", zap.Error(err))
	}
}

// fingerprint identifies a conversation by its opening turns, so every request
// of one session carries the same value.
func (s *ChatService) fingerprint(history []domain.Message) string {
	if s.hasher == nil || len(history) == 0 {
		return ""
	}
	opening := history
	if len(opening) > 2 {
		opening = opening[:2]
	}
	data, _ := json.Marshal(opening)
	return s.hasher.Hash(data)
}
