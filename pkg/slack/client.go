package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultAPIURL = "https://slack.com/api/chat.postMessage"

// API defines the delivery operation the reminder pipeline uses.
type API interface {
	PostMessage(ctx context.Context, channel string, msg Message) error
}

// Client posts messages to Slack.
type Client struct {
	httpClient *http.Client
	token      string
	apiURL     string
}

// Config holds configuration for creating a Slack client.
type Config struct {
	Token       string
	APIURL      string // Override for tests (empty = slack.com)
	HTTPTimeout time.Duration
}

// New creates a Slack client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("no Slack token provided")
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		token:      cfg.Token,
		apiURL:     apiURL,
	}, nil
}

var _ API = (*Client)(nil)

// PostMessage delivers a message to a channel. A failure is a failure: there
// are no retries, the caller decides what a failed delivery means. Slack
// reports most errors as HTTP 200 with "ok": false, so the body is always
// inspected.
func (c *Client) PostMessage(ctx context.Context, channel string, msg Message) error {
	body, err := json.Marshal(payload(channel, msg))
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	slog.Info("Posting message to Slack", "component", "slack", "channel", channel, "plain", msg.IsPlain())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", channel, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message to %s (status %d)", channel, resp.StatusCode)
	}

	var result struct {
		Error string `json:"error"`
		OK    bool   `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack rejected message to %s: %s", channel, result.Error)
	}

	return nil
}
