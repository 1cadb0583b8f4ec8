// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anichat/anichat-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000).
	// The explicit IPv4 address avoids IPv6 resolution issues with
	// localhost on some platforms.
	BaseURL string

	// Timeout bounds every request (default: 30s). The backend calls
	// an LLM on /chat, so this stays generous.
	Timeout time.Duration

	// RequestsPerSec is the politeness limit in front of every request
	// (default: 5). It spaces accidental bursts; it never queues user
	// operations, which the controller already serializes.
	RequestsPerSec float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://127.0.0.1:5000",
		Timeout:        30 * time.Second,
		RequestsPerSec: 5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the AniChat backend.
//
// The backend keys session ownership off its HTTP session cookie, so
// the client carries a cookie jar for the lifetime of the process.
// Client is safe for concurrent use, though the controller above it
// only ever issues one mutating request at a time.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RequestsPerSec <= 0 {
		config.RequestsPerSec = 5
	}

	// cookiejar.New only fails on a bad PublicSuffixList; nil is valid.
	jar, _ := cookiejar.New(nil)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Jar:     jar,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSec), int(config.RequestsPerSec)),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckReachable verifies the backend answers HTTP at all. Any HTTP
// status counts as reachable; only transport failures do not.
func (c *Client) CheckReachable(ctx context.Context) error {
	const op = "reach server"
	if err := c.limiter.Wait(ctx); err != nil {
		return wrapTransport(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Kind: ErrKindConnection, Op: op, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransport(op, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// NewChat creates a fresh session and returns its id.
func (c *Client) NewChat(ctx context.Context) (string, error) {
	const op = "start new chat"
	var out newChatResponse
	if err := c.do(ctx, op, http.MethodPost, "/new_chat", nil, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", backendError(op, out.Message)
	}
	if out.NewChatID == "" {
		return "", invalidResponse(op, nil)
	}
	return out.NewChatID.String(), nil
}

// Send posts a user message. The owning session is implied by the
// backend's own cookie-bound state, not by the request body.
func (c *Client) Send(ctx context.Context, message string) (SendResult, error) {
	const op = "send message"
	var out chatResponse
	if err := c.do(ctx, op, http.MethodPost, "/chat", chatRequest{Message: message}, &out); err != nil {
		return SendResult{}, err
	}
	return SendResult{
		Reply:          out.Response,
		CurrentChatID:  out.CurrentChatID.String(),
		RefreshHistory: out.RefreshHistory,
	}, nil
}

// Sessions fetches the full session list, newest ordering as the
// server returns it.
func (c *Client) Sessions(ctx context.Context) ([]model.Session, error) {
	const op = "list sessions"
	var out sessionsResponse
	if err := c.do(ctx, op, http.MethodGet, "/get_chat_sessions", nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]model.Session, 0, len(out.Sessions))
	for _, ws := range out.Sessions {
		sessions = append(sessions, ws.toModel())
	}
	return sessions, nil
}

// LoadChat fetches the transcript of a session.
func (c *Client) LoadChat(ctx context.Context, sessionID string) (LoadResult, error) {
	const op = "load chat"
	var out loadChatResponse
	if err := c.do(ctx, op, http.MethodGet, "/load_chat/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return LoadResult{}, err
	}
	if !out.Success {
		return LoadResult{}, backendError(op, out.Message)
	}
	res := LoadResult{CurrentChatID: out.CurrentChatID.String()}
	if res.CurrentChatID == "" {
		res.CurrentChatID = sessionID
	}
	res.Messages = make([]TranscriptMessage, 0, len(out.Messages))
	for _, wm := range out.Messages {
		res.Messages = append(res.Messages, TranscriptMessage{
			Content: wm.Content,
			Sender:  model.ParseSender(wm.Sender),
		})
	}
	return res, nil
}

// DeleteChat deletes a session and returns the id of the session that
// should become current afterward (the backend creates a fresh empty
// one when the active session was deleted and none remain).
func (c *Client) DeleteChat(ctx context.Context, sessionID string) (string, error) {
	const op = "delete chat"
	var out deleteChatResponse
	if err := c.do(ctx, op, http.MethodDelete, "/delete_chat/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", backendError(op, out.Message)
	}
	return out.NewCurrentChatID.String(), nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do runs one request/response cycle: limiter, request build, send,
// status check, JSON decode. body may be nil; out must be a pointer.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return wrapTransport(op, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Kind: ErrKindUnknown, Op: op, Message: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Kind: ErrKindConnection, Op: op, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransport(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return wrapTransport(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies may still be the JSON shape with a message in
		// them (the backend answers 403/500 that way); prefer that
		// message over the bare status line.
		var probe struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &probe); jsonErr == nil && probe.Message != "" {
			return backendError(op, probe.Message)
		}
		return backendError(op, "unexpected status "+resp.Status)
	}

	if out != nil {
		if !strings.Contains(resp.Header.Get("Content-Type"), "json") {
			return invalidResponse(op, nil)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return invalidResponse(op, err)
		}
	}
	return nil
}
