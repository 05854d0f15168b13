package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/config"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

const (
	DefaultTimeout = 45 * time.Second

	maxResponseSize = 1 << 20
)

// Client performs one request/response cycle per Send against the reply
// endpoint and always yields displayable content.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	texts      Texts
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each exchange. An expired exchange resolves to the
// fallback text.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTexts(texts Texts) Option {
	return func(c *Client) {
		if texts.Fallback != "" {
			c.texts.Fallback = texts.Fallback
		}
		if texts.EmptyReply != "" {
			c.texts.EmptyReply = texts.EmptyReply
		}
	}
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		texts: Texts{
			Fallback:   config.DefaultFallback,
			EmptyReply: config.DefaultEmptyReply,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.Exchanger = (*Client)(nil)

// Send implements domain.Exchanger.
func (c *Client) Send(ctx context.Context, history []domain.Message) string {
	requestID := uuid.NewString()
	ctx = log.WithRequestID(ctx, requestID)
	startTime := time.Now()

	content, err := c.texts.Resolve(c.do(ctx, requestID, history))

	logger := log.WithCtx(ctx).With(
		zap.Int("turns", len(history)),
		zap.Duration("duration", time.Since(startTime)),
	)
	switch {
	case err == nil:
		logger.Debug("Exchange settled")
	case errors.Is(err, ErrEmptyReply):
		logger.Warn("Reply endpoint returned an empty reply", zap.Error(err))
	default:
		logger.Error("Exchange failed, showing fallback", zap.Error(err))
	}
	return content
}

func (c *Client) do(ctx context.Context, requestID string, history []domain.Message) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(domain.ChatRequest{Messages: history})
	if err != nil {
		return Outcome{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return Outcome{Err: fmt.Errorf("reading response body: %w", err)}
	}
	if len(raw) > maxResponseSize {
		return Outcome{Err: fmt.Errorf("%w: status %d, over %d bytes", ErrResponseTooLarge, resp.StatusCode, maxResponseSize)}
	}
	return Outcome{Status: resp.StatusCode, Body: raw}
}
