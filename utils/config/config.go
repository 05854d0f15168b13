package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultGreeting   = "Hi 😄 Write something and I'll answer!"
	DefaultFallback   = "Sorry, something went wrong on our side. Please try again in a moment."
	DefaultEmptyReply = "I don't have an answer to that right now."

	DefaultGeminiModel = "gemini-2.0-flash-001"
)

// Config holds settings for both the reply server and the chatview client.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Replier ReplierConfig `yaml:"replier"`
	Client  ClientConfig  `yaml:"client"`
	Sentry  SentryConfig  `yaml:"sentry"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	BodyLimit    string   `yaml:"body_limit"`
	RateLimit    float64  `yaml:"rate_limit"` // requests per second per client IP
	AllowOrigins []string `yaml:"allow_origins"`
}

// ReplierConfig selects how the server derives replies.
type ReplierConfig struct {
	Provider     string `yaml:"provider"` // "echo" or "gemini"
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	SystemPrompt string `yaml:"system_prompt"`
}

// ClientConfig holds the chat view's endpoint and user-facing texts.
type ClientConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	FeedURL    string        `yaml:"feed_url"`
	Timeout    time.Duration `yaml:"timeout"`
	Greeting   string        `yaml:"greeting"`
	Fallback   string        `yaml:"fallback"`
	EmptyReply string        `yaml:"empty_reply"`
}

type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			BodyLimit: "1M",
			RateLimit: 20,
			AllowOrigins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
			},
		},
		Replier: ReplierConfig{
			Provider: "echo",
			Model:    DefaultGeminiModel,
		},
		Client: ClientConfig{
			Endpoint:   "http://localhost:8080/api/chat",
			FeedURL:    "ws://localhost:8080/ws",
			Timeout:    45 * time.Second,
			Greeting:   DefaultGreeting,
			Fallback:   DefaultFallback,
			EmptyReply: DefaultEmptyReply,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty) and environment overrides, in that order. ${VAR} references in the
// file are expanded from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or an empty
// string when it is unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CHAT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CHAT_REPLIER"); v != "" {
		cfg.Replier.Provider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Replier.APIKey = v
	}
	if v := os.Getenv("CHAT_ENDPOINT"); v != "" {
		cfg.Client.Endpoint = v
	}
	if v := os.Getenv("CHAT_FEED_URL"); v != "" {
		cfg.Client.FeedURL = v
	}
	if v := os.Getenv("CHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}
}

// Validate checks that required fields are present and fills blank texts with
// their defaults. The replier section is only checked by the server, see
// ReplierConfig.Validate.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Client.Endpoint == "" {
		return fmt.Errorf("client.endpoint is required")
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}

	if strings.TrimSpace(c.Client.Greeting) == "" {
		c.Client.Greeting = DefaultGreeting
	}
	if strings.TrimSpace(c.Client.Fallback) == "" {
		c.Client.Fallback = DefaultFallback
	}
	if strings.TrimSpace(c.Client.EmptyReply) == "" {
		c.Client.EmptyReply = DefaultEmptyReply
	}
	return nil
}

// Validate checks the provider selection. Only the server builds a replier,
// so the chatview client never calls it.
func (r ReplierConfig) Validate() error {
	switch strings.ToLower(r.Provider) {
	case "echo":
	case "gemini":
		if r.Model == "" {
			return fmt.Errorf("replier.model is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown replier.provider %q", r.Provider)
	}
	return nil
}
