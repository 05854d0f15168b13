package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/adapters/hasher"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/message_broker"
	"github.com/satriahrh/cocoa-fruit/studychat/adapters/websocket"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

func main() {
	gotenv.Load()

	var configPath string
	rootCmd := &cobra.Command{
		Use:           "studychat",
		Short:         "Reply endpoint and exchange feed for the study chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", os.Getenv("CHAT_CONFIG"), "path to a YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Logger().Fatal("Server failed", zap.Error(err))
	}
}

func serve(ctx context.Context, configPath string) error {
	logger := log.Logger()
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Replier.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	replier, err := newReplier(ctx, cfg.Replier)
	if err != nil {
		return err
	}

	broker := message_broker.NewChannelMessageBroker()
	defer broker.Close()

	svc := usecase.NewChatService(replier, broker, hasher.NewFingerprint())

	feed := websocket.NewServer(broker)
	if err := feed.Run(ctx); err != nil {
		return err
	}

	e := newServer(cfg.Server, svc, feed)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("replier", cfg.Replier.Provider))
		logger.Info("Available endpoints: POST /api/chat, GET /api/v1/health, GET /ws")
		errCh <- e.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
