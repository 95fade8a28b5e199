package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
)

// displayNameCache caches login-to-display-name resolutions for the lifetime
// of one run. Entries are never invalidated: a run is short-lived, so
// staleness is acceptable. The lock exists so the cache stays correct if team
// processing is ever parallelized.
type displayNameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func newDisplayNameCache() *displayNameCache {
	return &displayNameCache{names: make(map[string]string)}
}

func (dc *displayNameCache) get(login string) (string, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	name, ok := dc.names[login]
	return name, ok
}

func (dc *displayNameCache) set(login, name string) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.names[login] = name
}

// DisplayName resolves a login to the user's display name, caching the result
// for the run. It never fails: on any lookup error the login itself is
// returned so a flaky identity lookup cannot block a reminder.
func (c *Client) DisplayName(ctx context.Context, login string) string {
	if name, ok := c.names.get(login); ok {
		return name
	}

	name := c.fetchDisplayName(ctx, login)
	c.names.set(login, name)
	return name
}

func (c *Client) fetchDisplayName(ctx context.Context, login string) string {
	slog.Info("Fetching user profile for display name", "component", "api", "login", login)
	apiURL := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(login))

	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		slog.Warn("Failed to fetch user profile, falling back to login", "login", login, "error", err)
		return login
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Failed to fetch user profile, falling back to login", "login", login, "status", resp.StatusCode)
		return login
	}

	var user struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		slog.Warn("Failed to decode user profile, falling back to login", "login", login, "error", err)
		return login
	}
	if user.Name == "" {
		return login
	}
	return user.Name
}
