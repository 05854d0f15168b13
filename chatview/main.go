package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/adapters/exchange"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

var (
	configPath string
	endpoint   string
	feedURL    string
	timeout    time.Duration
	plain      bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "chatview",
	Short: "Terminal chat against the study chat reply endpoint",
	Long: `chatview keeps one in-memory conversation and sends the full history to the
reply endpoint on every message. Nothing is saved when it exits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// the full-screen UI owns the terminal
		quiet := cmd.Parent() == nil && !plain
		return setupLogger(logFile, quiet)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if plain {
			store := usecase.NewConversationStore(newExchangeClient(cfg.Client), cfg.Client.Greeting)
			return runPlain(cmd.Context(), store, os.Stdin, cmd.OutOrStdout())
		}
		return runTUI(cmd.Context(), newExchangeClient(cfg.Client), cfg.Client.Greeting)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print exchange events from the server's feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runWatch(cmd.Context(), cfg.Client.FeedURL, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CHAT_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write diagnostics to this file (default: discarded in TUI mode, stderr otherwise)")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "reply endpoint URL")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "give up on a reply after this long")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "line-based mode without the full-screen UI")
	watchCmd.Flags().StringVar(&feedURL, "feed", "", "exchange feed websocket URL")

	rootCmd.AddCommand(watchCmd)
}

func main() {
	gotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Client.Endpoint = endpoint
	}
	if cmd.Flags().Changed("timeout") && timeout > 0 {
		cfg.Client.Timeout = timeout
	}
	if cmd.Flags().Changed("feed") {
		cfg.Client.FeedURL = feedURL
	}
	return cfg, nil
}

func newExchangeClient(cfg config.ClientConfig) *exchange.Client {
	return exchange.NewClient(cfg.Endpoint,
		exchange.WithTimeout(cfg.Timeout),
		exchange.WithTexts(exchange.Texts{Fallback: cfg.Fallback, EmptyReply: cfg.EmptyReply}),
	)
}

// setupLogger sends zap output to path, or discards it when quiet and no path
// is given.
func setupLogger(path string, quiet bool) error {
	if path == "" {
		if quiet {
			log.SetLogger(zap.NewNop())
		}
		return nil
	}

	zcfg := zap.NewProductionConfig()
	if os.Getenv("DEBUG") == "true" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.SetLogger(logger)
	return nil
}
