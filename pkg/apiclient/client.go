// Package apiclient turns JSON API calls into netbound outcomes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/illmade-knight/go-netbound/pkg/netbound"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API client.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// Envelope is the response body shape shared by every endpoint.
type Envelope[R any] struct {
	Result  *R                `json:"result"`
	Message string            `json:"message,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Client performs JSON requests against one API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new API client. The timeout defaults to 30 seconds.
func New(cfg *Config, logger zerolog.Logger) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("api base url cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "APIClient").Logger(),
	}, nil
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Do performs a request and classifies the response:
//   - no response (transport error, timeout) → NoResponse
//   - 204, empty body or null result → Empty
//   - status >= 300 → Failed with the server message
//   - 2xx with a decodable envelope → Succeeded
func Do[R any](ctx context.Context, c *Client, method, path string, body any) netbound.Outcome[R] {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return netbound.Failed[R]{Message: fmt.Sprintf("failed to marshal request body: %v", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return netbound.Failed[R]{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Request failed before a response was received.")
		return netbound.NoResponse[R]{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("Failed to read response body.")
		return netbound.NoResponse[R]{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return classify[R](resp.StatusCode, respBody)
}

func classify[R any](statusCode int, body []byte) netbound.Outcome[R] {
	var env Envelope[R]
	decodeErr := errors.New("empty body")
	if len(bytes.TrimSpace(body)) > 0 {
		decodeErr = json.Unmarshal(body, &env)
	}

	if statusCode < 200 || statusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return netbound.Failed[R]{Message: msg, StatusCode: statusCode}
	}

	if statusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return netbound.Empty[R]{Message: "empty response", StatusCode: statusCode}
	}
	if decodeErr != nil {
		return netbound.Failed[R]{Message: fmt.Sprintf("failed to decode response: %v", decodeErr), StatusCode: statusCode}
	}
	if env.Result == nil && env.Message != "" {
		return netbound.Empty[R]{Message: env.Message, StatusCode: statusCode}
	}
	return netbound.Succeeded[R]{Payload: env.Result, StatusCode: statusCode, Metadata: env.Meta}
}

// Get performs a GET request.
func Get[R any](ctx context.Context, c *Client, path string) netbound.Outcome[R] {
	return Do[R](ctx, c, http.MethodGet, path, nil)
}

// Call returns a netbound.NetworkCall that performs the request when invoked.
func Call[R any](c *Client, method, path string, body any) netbound.NetworkCall[R] {
	return func(ctx context.Context) netbound.Outcome[R] {
		return Do[R](ctx, c, method, path, body)
	}
}
