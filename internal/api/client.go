package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client wraps HTTP calls to the provider backend.
type Client struct {
	baseURL       string
	successMarker string
	httpClient    *http.Client
	logger        zerolog.Logger
}

// NewClient creates a new API client.
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	httpTimeout := 30 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		httpTimeout = timeout[0]
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		successMarker: DefaultSuccessMarker,
		httpClient: &http.Client{
			Timeout: httpTimeout,
		},
		logger: zerolog.Nop(),
	}
}

// SetSuccessMarker changes the substring that marks a confirmed mutation.
func (c *Client) SetSuccessMarker(marker string) {
	if strings.TrimSpace(marker) != "" {
		c.successMarker = marker
	}
}

// SetLogger attaches a logger for request failures.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTimeout clones the client with a different HTTP timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	clone := NewClient(c.baseURL, timeout)
	clone.successMarker = c.successMarker
	clone.logger = c.logger
	return clone
}

// do executes an HTTP request and returns the raw response body.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("request failed")
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("backend returned an error")
		if msg, ok := extractAPIErrorBody(respBody); ok {
			return nil, resp.StatusCode, fmt.Errorf("%s", msg)
		}
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, resp.StatusCode, nil
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, nil)
	return body, err
}

// post performs a POST request.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	b, _, err := c.do(ctx, http.MethodPost, path, body)
	return b, err
}

// put performs a PUT request.
func (c *Client) put(ctx context.Context, path string, body any) ([]byte, error) {
	b, _, err := c.do(ctx, http.MethodPut, path, body)
	return b, err
}

// del performs a DELETE request.
func (c *Client) del(ctx context.Context, path string) ([]byte, error) {
	b, _, err := c.do(ctx, http.MethodDelete, path, nil)
	return b, err
}

// decode decodes a bare JSON response body.
func decode[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// confirm decodes an acknowledgement and checks it for the success marker.
func (c *Client) confirm(data []byte) (*MessageResponse, error) {
	resp, err := decode[MessageResponse](data)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(resp.Message, c.successMarker) {
		return &resp, &NotConfirmedError{Message: resp.Message}
	}
	return &resp, nil
}

func extractAPIErrorBody(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	for _, key := range []string{"error", "message", "detail", "title"} {
		if msg, ok := parseErrorValue(payload[key]); ok {
			return msg, true
		}
	}
	return "", false
}

func parseErrorValue(raw any) (string, bool) {
	switch value := raw.(type) {
	case string:
		msg := strings.TrimSpace(value)
		if msg == "" {
			return "", false
		}
		return msg, true
	case map[string]any:
		if nested, ok := parseErrorValue(value["error"]); ok {
			return nested, true
		}
		code, _ := value["code"].(string)
		message, _ := value["message"].(string)
		return formatAPIError(code, message)
	}
	return "", false
}

func formatAPIError(code, message string) (string, bool) {
	code = strings.TrimSpace(code)
	message = strings.TrimSpace(message)
	switch {
	case code != "" && message != "":
		return fmt.Sprintf("%s: %s", code, message), true
	case code != "":
		return code, true
	case message != "":
		return message, true
	default:
		return "", false
	}
}
