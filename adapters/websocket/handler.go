package websocket

import (
	"github.com/labstack/echo/v4"
)

// Handler upgrades "/ws" requests and keeps the observer registered until it
// disconnects.
func (s *Server) Handler(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, c.RealIP())
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	client.Run()
	<-client.Context().Done()

	return nil
}
