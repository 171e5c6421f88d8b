// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/engine/conversation"
)

// Client talks to a running chat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// HandleTurn posts one message to /chat.
func (c *Client) HandleTurn(ctx context.Context, sessionID, message string) (*conversation.TurnResult, error) {
	var out conversation.TurnResult
	if err := c.do(ctx, http.MethodPost, "/chat", chatRequest{Message: message, SessionID: sessionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready calls /ready and returns an error unless every check passed.
func (c *Client) Ready(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/ready", nil, &out); err != nil {
		return err
	}
	if out.Status != "ready" {
		return fmt.Errorf("chat api not ready: %s", out.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// decodeError rebuilds the server's StandardError from its error body.
func decodeError(status int, raw []byte) error {
	var body struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			Details   string `json:"details"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Code == "" {
		return fmt.Errorf("unexpected status %d: %s", status, strings.TrimSpace(string(raw)))
	}
	return &errors.StandardError{
		Code:      errors.ErrorCode(body.Error.Code),
		Message:   body.Error.Message,
		Details:   body.Error.Details,
		Retryable: body.Error.Retryable,
		Timestamp: time.Now().UTC(),
	}
}
