// Package client is the typed Go SDK for the medirides API. Every
// call attaches the bearer token from the session at call time,
// translates non-2xx responses into the error taxonomy, and clears
// the session on 401 so the caller's next check reflects logged out.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to one API deployment. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for
// tests and custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client against baseURL using the given session store.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session store the client reads tokens from.
func (c *Client) Session() *Session {
	return c.session
}

// ListOptions are the standard list query parameters. The server is
// authoritative for filtering and sorting.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// envelope matches the server's response wrapper.
type envelope struct {
	Error   bool            `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Details []FieldError    `json:"details,omitempty"`
}

// do issues one request. authed calls fail with Unauthenticated
// before touching the network when no token is held.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var token string
	if authed {
		token = c.session.AccessToken()
		if token == "" {
			return &Error{
				Kind:    Unauthenticated,
				Message: "no session token, please log in",
			}
		}
	}

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{
			Kind:    TransientNetworkFailure,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			// next IsAuthenticated check reflects logged out
			c.session.Clear()
		}

		message := env.Message
		if decodeErr != nil || message == "" {
			message = fallbackMessage(resp.StatusCode)
		}

		return &Error{
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: message,
			Details: env.Details,
		}
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}
