package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/google/uuid"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultConnectTimeout = 5 * time.Second
	defaultTLSTimeout     = 5 * time.Second
)

func defaultHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultTLSTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// Client is the typed gateway to the backend RPC surface. It performs no
// retries and no caching; every method is a pass-through adapter that returns
// a typed result or a classified *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.RWMutex
	sessionToken string
}

// NewClient creates a new backend client for the given base URL.
func NewClient(baseURL string, requestTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient(requestTimeout),
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSessionToken attaches the session token to subsequent calls. An empty
// token makes the client anonymous.
func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

// errorEnvelope is the backend's error body.
type errorEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindInternal
	}
}

// call performs one RPC invocation and decodes the result into R. A null or
// empty body decodes to R's zero value, which is how the backend reports
// "not found" on optional reads.
func call[R any](ctx context.Context, c *Client, method string, args any) (R, error) {
	var zero R

	payload := []byte("{}")
	if args != nil {
		var err error
		payload, err = json.Marshal(args)
		if err != nil {
			return zero, fmt.Errorf("failed to encode %s args: %w", method, err)
		}
	}

	requestID := uuid.New().String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rpc/%s", c.baseURL, method), bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, &Error{
			Kind:      KindUnavailable,
			Message:   err.Error(),
			RequestID: requestID,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &Error{
			Kind:      KindUnavailable,
			Message:   fmt.Sprintf("failed to read %s response: %v", method, err),
			RequestID: requestID,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Kind:      kindForStatus(resp.StatusCode),
			Message:   fmt.Sprintf("%s returned status %d", method, resp.StatusCode),
			RequestID: requestID,
		}
		var envelope errorEnvelope
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
			switch ErrorKind(envelope.Error.Kind) {
			case KindUnauthorized, KindNotFound, KindUnavailable, KindInternal:
				apiErr.Kind = ErrorKind(envelope.Error.Kind)
			}
		}
		return zero, apiErr
	}

	if len(bytes.TrimSpace(body)) == 0 || string(bytes.TrimSpace(body)) == "null" {
		return zero, nil
	}
	if err := json.Unmarshal(body, &zero); err != nil {
		return zero, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return zero, nil
}

// callVoid performs one RPC invocation discarding the result body.
func callVoid(ctx context.Context, c *Client, method string, args any) error {
	_, err := call[json.RawMessage](ctx, c, method, args)
	return err
}

// FetchBlobBytes retrieves the raw bytes behind a blob reference. The session
// token is attached only when the blob is hosted by the backend itself.
func (c *Client) FetchBlobBytes(ctx context.Context, blob models.Blob) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blob.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}
	if strings.HasPrefix(blob.URL, c.baseURL) {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Message: fmt.Sprintf("blob fetch returned status %d", resp.StatusCode),
		}
	}
	return io.ReadAll(resp.Body)
}
