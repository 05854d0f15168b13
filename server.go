package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/satriahrh/cocoa-fruit/studychat/adapters/http"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/llm"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/websocket"
	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
)

func newReplier(ctx context.Context, cfg config.ReplierConfig) (domain.Replier, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.SystemPrompt)
	case "echo", "":
		return llm.NewEchoReplier(), nil
	default:
		return nil, fmt.Errorf("unknown replier provider %q", cfg.Provider)
	}
}

// newServer wires the reply endpoint, health check and exchange feed.
func newServer(cfg config.ServerConfig, svc *usecase.ChatService, feed *websocket.Server) *echo.Echo {
	chatHandler := http.NewChatHandler(svc)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = http.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(http.RequestID())
	e.Use(http.RequestLogger())
	e.Use(middleware.Secure())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderXRequestID,
		},
		MaxAge: 86400,
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	e.POST("/api/chat", chatHandler.Chat)
	e.GET("/api/v1/health", chatHandler.HealthCheck)
	if feed != nil {
		e.GET("/ws", feed.Handler)
	}

	return e
}
