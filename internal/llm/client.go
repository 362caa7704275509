// Package llm provides the client for the remote chat-completion model.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/antaresinnovate/eva/internal/domain"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 1 * time.Second
	attemptTimeout     = 30 * time.Second
	temperature        = 0.7
)

// ChatRequest describes one model invocation: the composed system message,
// the prior history replayed in original order, and the new user message.
type ChatRequest struct {
	URL         string
	Model       string
	System      string
	History     []domain.Message
	UserMessage string
}

// Client talks to an Ollama-compatible chat endpoint.
type Client struct {
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient creates a model client with the per-attempt timeout applied.
func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: attemptTimeout},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultRetryDelay,
	}
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model    string       `json:"model"`
	Messages []apiMessage `json:"messages"`
	Stream   bool         `json:"stream"`
	Options  chatOptions  `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Complete sends the chat request, retrying transport failures with
// exponential backoff (1s, 2s). It returns an error only after exhausting
// retries; a successful call with an empty payload returns an empty string so
// the caller can substitute its fallback without retrying.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]apiMessage, 0, len(req.History)+2)
	messages = append(messages, apiMessage{Role: "system", Content: req.System})
	for _, m := range req.History {
		messages = append(messages, apiMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, apiMessage{Role: domain.RoleUser, Content: req.UserMessage})

	body, err := json.Marshal(chatPayload{
		Model:    req.Model,
		Messages: messages,
		Stream:   false,
		Options:  chatOptions{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		text, err := c.post(ctx, req.URL, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		slog.Warn("Model call failed", "attempt", attempt+1, "max_attempts", c.maxAttempts, "error", err)

		if attempt < c.maxAttempts-1 {
			delay := c.baseDelay << attempt
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("model call canceled: %w", ctx.Err())
			}
		}
	}
	return "", fmt.Errorf("model unavailable after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("post chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	// An empty content on a 2xx is a valid-but-useless reply: the caller
	// substitutes a fallback rather than retrying.
	return strings.TrimSpace(out.Message.Content), nil
}
