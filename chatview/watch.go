package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

// runWatch prints every exchange event from the feed until ctx is done or the
// server closes the connection.
func runWatch(ctx context.Context, feedURL string, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", feedURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	fmt.Fprintf(out, "Watching %s\n", feedURL)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading feed: %w", err)
		}

		var event domain.ExchangeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Logger().Warn("Skipping unreadable feed message", zap.Error(err))
			continue
		}
		fmt.Fprintln(out, formatEvent(event))
	}
}

func formatEvent(e domain.ExchangeEvent) string {
	status := "ok"
	if !e.Success {
		status = "FAILED: " + e.Error
	}
	return fmt.Sprintf("%s  conv=%s turns=%d %dms %s",
		e.Timestamp.Format("15:04:05"), e.Conversation, e.Turns, e.DurationMs, status)
}
