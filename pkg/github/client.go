// Package github provides the GitHub API client used to list open pull
// requests and resolve author display names.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// Client handles all GitHub API interactions for one run.
type Client struct {
	httpClient   *http.Client
	names        *displayNameCache
	baseURL      string
	org          string
	token        string
	appID        string
	privateKey   []byte
	tokenExpiry  time.Time
	installToken string
	installUntil time.Time
	tokenMutex   sync.Mutex
	isAppAuth    bool
}

// Config holds configuration for creating a new GitHub client.
type Config struct {
	Token       string // Personal access token (for non-app auth)
	Org         string // Organization whose repositories are listed
	AppID       string
	AppKeyPath  string
	BaseURL     string // Override for tests (empty = api.github.com)
	HTTPTimeout time.Duration
	UseAppAuth  bool
}

// New creates a GitHub client using personal token or GitHub App authentication.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Org == "" {
		return nil, errors.New("organization is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		names:      newDisplayNameCache(),
		baseURL:    baseURL,
		org:        cfg.Org,
	}

	if cfg.UseAppAuth {
		if err := c.initAppAuth(ctx, cfg.AppID, cfg.AppKeyPath); err != nil {
			return nil, err
		}
		return c, nil
	}

	if cfg.Token == "" {
		return nil, errors.New("no GitHub token provided")
	}
	c.token = cfg.Token
	slog.Info("Using personal access token authentication", "component", "auth")
	return c, nil
}

// Org returns the organization this client lists repositories for.
func (c *Client) Org() string {
	return c.org
}

// drainAndCloseBody drains and closes an HTTP response body to prevent
// connection churn.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// doRequest makes a single authenticated request to the GitHub API. There is
// no retry: a failed call is reported to the caller as-is.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("HTTP request", "component", "http", "method", method, "url", apiURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	slog.Debug("HTTP response", "component", "http", "method", method, "url", apiURL, "status", resp.StatusCode)

	return resp, nil
}
