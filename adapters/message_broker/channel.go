package message_broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

const subscriberBuffer = 100

type subscription struct {
	routingKey string
	ch         chan domain.BrokerMessage
}

// ChannelMessageBroker implements MessageBroker using Go channels. Every
// subscriber of a topic gets its own buffered channel; a subscriber with an
// empty routing key receives all messages on the topic.
type ChannelMessageBroker struct {
	mu     sync.RWMutex
	topics map[string][]*subscription
	closed bool
	done   chan struct{}
}

// NewChannelMessageBroker creates a new channel-based message broker
func NewChannelMessageBroker() *ChannelMessageBroker {
	return &ChannelMessageBroker{
		topics: make(map[string][]*subscription),
		done:   make(chan struct{}),
	}
}

// Publish delivers message to every matching subscriber. Subscribers whose
// buffer is full miss the message; Publish never blocks on them.
func (b *ChannelMessageBroker) Publish(ctx context.Context, topic string, routingKey string, message []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("message broker is closed")
	}

	msg := domain.BrokerMessage{
		Topic:      topic,
		RoutingKey: routingKey,
		Payload:    message,
		Timestamp:  time.Now(),
	}

	dropped := 0
	for _, sub := range b.topics[topic] {
		if sub.routingKey != "" && sub.routingKey != routingKey {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			dropped++
		}
	}

	log.WithCtx(ctx).Debug("Message published to topic",
		zap.String("topic", topic),
		zap.String("routingKey", routingKey),
		zap.Int("payload_size", len(message)),
		zap.Int("dropped", dropped))

	if dropped > 0 {
		return fmt.Errorf("%d subscriber(s) of %s are full", dropped, topic)
	}
	return nil
}

// Subscribe returns a channel that is closed when ctx is done or the broker
// closes.
func (b *ChannelMessageBroker) Subscribe(ctx context.Context, topic string, routingKey string) (<-chan domain.BrokerMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("message broker is closed")
	}

	sub := &subscription{
		routingKey: routingKey,
		ch:         make(chan domain.BrokerMessage, subscriberBuffer),
	}
	b.topics[topic] = append(b.topics[topic], sub)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, sub)
		case <-b.done:
			// Close already closed every subscriber channel
		}
	}()

	log.WithCtx(ctx).Info("Subscribed to topic", zap.String("topic", topic), zap.String("routingKey", routingKey))
	return sub.ch, nil
}

func (b *ChannelMessageBroker) unsubscribe(topic string, target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, sub := range subs {
		if sub == target {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

// Close closes the message broker and all subscriber channels
func (b *ChannelMessageBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	close(b.done)
	for topic, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
		}
		log.With(zap.String("topic", topic)).Debug("Closed topic subscribers", zap.Int("count", len(subs)))
	}
	b.topics = make(map[string][]*subscription)

	log.Logger().Info("Message broker closed")
	return nil
}

// SubscriberCount returns the number of live subscriptions on topic.
func (b *ChannelMessageBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// IsClosed returns whether the broker is closed
func (b *ChannelMessageBroker) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
