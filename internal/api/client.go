// Package api is the typed HTTP client for the remote commerce backend:
// cart, products, addresses, offers, payment lifecycle and order placement.
// It owns the wire contract and maps remote failures onto the storefront's
// error taxonomy so callers can branch with errors.Is.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/digicoders-git/espejo-website-sub001/internal/auth"
)

var (
	// ErrAuthRequired means the backend rejected the credential (401). The
	// caller must evict the stored token and prompt re-authentication.
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnavailable covers transport failures, timeouts and an open circuit
	// breaker. Callers with a local fallback should take it.
	ErrUnavailable = errors.New("commerce api unavailable")
)

// RemoteError is a non-2xx response with a structured message. The message is
// surfaced to the shopper verbatim when present.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("commerce api returned status %d", e.StatusCode)
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	timeout    time.Duration
}

// NewClient builds a commerce API client. The http.Client is injected so the
// caller can instrument the transport; requestTimeout bounds every remote
// call so a hung backend can never park a storefront request forever.
func NewClient(baseURL string, httpClient *http.Client, requestTimeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "commerce-api",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    breaker,
		timeout:    requestTimeout,
	}
}

// do executes one API call and decodes the envelope. out may be nil when the
// caller only cares about success. Transport failures and an open breaker
// come back wrapping ErrUnavailable; 401 wraps ErrAuthRequired; other non-2xx
// statuses and success=false become a *RemoteError.
func (c *Client) do(ctx context.Context, sess auth.Session, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	var statusCode int
	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		statusCode = resp.StatusCode
		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	if statusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s %s", ErrAuthRequired, method, path)
	}

	var env envelope
	if jsonErr := json.Unmarshal(respBody, &env); jsonErr != nil {
		if statusCode >= 200 && statusCode < 300 {
			return fmt.Errorf("decode response: %w", jsonErr)
		}
		return &RemoteError{StatusCode: statusCode}
	}

	if statusCode < 200 || statusCode >= 300 || !env.Success {
		return &RemoteError{StatusCode: statusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}
