package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/backtester/pkg/logger"
)

// Client talks JSON to a running backtester server with retry and logging
// ⭐ SSOT: CLI의 원격 요청은 이 클라이언트를 통해서만 수행
type Client struct {
	httpClient  *http.Client
	baseURL     string
	logger      *logger.Logger
	retryConfig RetryConfig
	headers     map[string]string
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// StatusError is a non-2xx response decoded from the server's error body
type StatusError struct {
	StatusCode int
	Message    string
	Kind       string
}

func (e *StatusError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// New creates a client for baseURL. timeout bounds one attempt and must
// exceed the server's computation timeout for submit calls.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithComponent("httputil"),
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
		headers: map[string]string{},
	}
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// WithHeader sets a header sent on every request
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

// GetJSON performs a GET and decodes the response into out
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON encodes in, performs a POST and decodes the response into out
func (c *Client) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// do executes the request with retry logic and logging
func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	url := c.baseURL + path
	startTime := time.Now()

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"url":    url,
	}).Debug("HTTP request started")

	attempts := 1
	if c.retryConfig.Enabled {
		attempts += c.retryConfig.MaxRetries
	}
	delay := c.retryConfig.InitialDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var wait time.Duration
		wait, err = c.attempt(ctx, method, url, body, out)
		if err == nil {
			c.logger.WithFields(map[string]interface{}{
				"method":   method,
				"url":      url,
				"attempts": attempt,
				"duration": time.Since(startTime),
			}).Debug("HTTP request completed")
			return nil
		}
		if !retryable(err) || attempt == attempts {
			break
		}

		if wait < delay {
			wait = delay
		}
		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   wait,
			"url":     url,
		}).Warn("Retrying HTTP request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"method":   method,
		"url":      url,
		"duration": time.Since(startTime),
	}).WithError(err).Error("HTTP request failed")
	return err
}

// attempt sends one request. The duration is the server's Retry-After, if any.
func (c *Client) attempt(ctx context.Context, method, url string, body []byte, out interface{}) (time.Duration, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &transportError{err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &transportError{err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return retryAfter(resp.Header.Get("Retry-After")), decodeStatusError(resp.StatusCode, data)
	}

	if out == nil {
		return 0, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return 0, nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func decodeStatusError(status int, data []byte) *StatusError {
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(status)
		}
	}
	return &StatusError{StatusCode: status, Message: body.Error, Kind: body.Kind}
}

func retryable(err error) bool {
	switch e := err.(type) {
	case *transportError:
		return true
	case *StatusError:
		return IsRetryableStatus(e.StatusCode)
	}
	return false
}

// IsRetryableStatus reports statuses worth another attempt.
// A plain 500 is final: the server already ran the computation and failed.
func IsRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
