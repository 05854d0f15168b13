package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

// Server streams exchange events from the broker to websocket observers.
type Server struct {
	upgrader      websocket.Upgrader
	messageBroker domain.MessageBroker
	hub           *Hub
}

func NewServer(messageBroker domain.MessageBroker) *Server {
	return &Server{
		upgrader:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		messageBroker: messageBroker,
		hub:           NewHub(),
	}
}

// Run starts the hub and the exchange listener. Both stop when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	messageChan, err := s.messageBroker.Subscribe(ctx, domain.ExchangeTopic, "")
	if err != nil {
		return err
	}

	go s.hub.Run(ctx)
	go s.listen(ctx, messageChan)
	return nil
}

func (s *Server) GetHub() *Hub {
	return s.hub
}

func (s *Server) listen(ctx context.Context, messageChan <-chan domain.BrokerMessage) {
	log.WithCtx(ctx).Info("WebSocket server listening to exchange events")

	for {
		select {
		case msg, ok := <-messageChan:
			if !ok {
				log.WithCtx(ctx).Info("Exchange listener stopped")
				return
			}
			s.hub.Broadcast(msg.Payload)
			log.WithCtx(ctx).Debug("Broadcasted exchange event",
				zap.String("conversation", msg.RoutingKey),
				zap.Int("observers", s.hub.ClientCount()))

		case <-ctx.Done():
			log.WithCtx(ctx).Info("Exchange listener stopped")
			return
		}
	}
}
