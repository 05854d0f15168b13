package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
)

// ChatHandler serves the reply endpoint.
type ChatHandler struct {
	chatService *usecase.ChatService
}

func NewChatHandler(chatService *usecase.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers POST {messages} with {reply}. Failures are returned as
// *echo.HTTPError and rendered by ErrorHandler.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}

	reply, err := h.chatService.Reply(c.Request().Context(), req.Messages)
	if errors.Is(err, domain.ErrInvalidConversation) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid conversation").SetInternal(err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{Reply: reply})
}

// Health check endpoint
func (h *ChatHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"service":   "studychat",
	})
}
