package domain

import (
	"context"
	"time"
)

// MessageBroker defines the interface for message broker operations
type MessageBroker interface {
	// Publish sends a message to a specific topic/channel with a routing key
	Publish(ctx context.Context, topic string, routingKey string, message []byte) error

	// Subscribe listens for messages on a topic. An empty routing key receives
	// every message on the topic.
	Subscribe(ctx context.Context, topic string, routingKey string) (<-chan BrokerMessage, error)

	// Close closes the message broker connection
	Close() error
}

// BrokerMessage represents a message received from the broker
type BrokerMessage struct {
	Topic      string
	RoutingKey string
	Payload    []byte
	Timestamp  time.Time
}

// ExchangeTopic carries one ExchangeEvent per settled reply request.
const ExchangeTopic = "chat.exchanges"

// ExchangeEvent describes one request handled by the reply endpoint.
type ExchangeEvent struct {
	Conversation string    `json:"conversation"`
	RequestID    string    `json:"request_id,omitempty"`
	Turns        int       `json:"turns"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}
