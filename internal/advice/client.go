// Package advice fetches fallback replies from the Advice Slip API.
package advice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/config"
	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/logging"
)

// advicePath locates the reply text inside the JSON payload
const advicePath = "slip.advice"

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 64 << 10

// Fetcher returns one piece of advice
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Client queries the advice endpoint over a tls-client HTTP client
type Client struct {
	httpClient tls_client.HttpClient
	endpoint   string
	timeout    time.Duration
	logger     *zap.Logger
}

// Ensure Client implements Fetcher
var _ Fetcher = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the advice URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout bounds each request, connection and body read included
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new advice Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint: config.DefaultAdviceURL,
		timeout:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.OrNop(client.logger)

	if client.endpoint == "" {
		return nil, fmt.Errorf("advice endpoint must not be empty")
	}
	if client.timeout <= 0 {
		return nil, fmt.Errorf("advice timeout must be positive, got %s", client.timeout)
	}

	timeoutSeconds := int(client.timeout / time.Second)
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeoutSeconds),
		tls_client.WithClientProfile(profiles.Chrome_120),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	client.httpClient = httpClient

	return client, nil
}

// NewClientFromConfig creates a Client for the endpoint and timeout in cfg
func NewClientFromConfig(cfg config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(
		WithEndpoint(cfg.AdviceURL),
		WithTimeout(cfg.AdviceTimeout()),
		WithLogger(logger),
	)
}

// Endpoint returns the configured advice URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs one GET against the endpoint and extracts the advice text.
// Every failure is returned as a typed error from internal/errors.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return "", apierrors.NewNetworkError("create advice request", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isDeadline(ctx, err) {
			return "", apierrors.NewTimeoutError(fmt.Sprintf("advice request after %s", c.timeout))
		}
		return "", apierrors.NewNetworkError("fetch advice", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isDeadline(ctx, err) {
			return "", apierrors.NewTimeoutError("reading advice response")
		}
		return "", apierrors.NewNetworkError("read advice response", c.endpoint, err)
	}

	c.logger.Debug("advice response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", apierrors.NewAPIError(resp.StatusCode, c.endpoint, "unexpected status")
	}

	return ParseAdvice(body)
}

// ParseAdvice extracts slip.advice from a payload like
// {"slip": {"id": 1, "advice": "..."}}.
func ParseAdvice(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", "")
	}

	result := gjson.GetBytes(body, advicePath)
	if !result.Exists() {
		return "", apierrors.NewParseError("field not found", advicePath)
	}
	if result.Type != gjson.String {
		return "", apierrors.NewParseError("field is not a string", advicePath)
	}

	text := strings.TrimSpace(result.String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", advicePath, apierrors.ErrNoContent)
	}
	return text, nil
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
