// Package testutil provides programmable mock clients for testing the
// reminder pipeline.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/codeGROOVE-dev/review-reminder/pkg/github"
	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// MockGitHubClient implements github.API for testing. Responses and errors
// are configured per repository and per login.
type MockGitHubClient struct {
	pullRequests map[string][]types.PullRequest
	displayNames map[string]string
	errors       map[string]error
	listCalls    []string
	nameCalls    []string
	mu           sync.Mutex
}

var _ github.API = (*MockGitHubClient)(nil)

// NewMockGitHubClient creates an empty MockGitHubClient.
func NewMockGitHubClient() *MockGitHubClient {
	return &MockGitHubClient{
		pullRequests: make(map[string][]types.PullRequest),
		displayNames: make(map[string]string),
		errors:       make(map[string]error),
	}
}

// SetPullRequests configures the open PRs returned for a repository.
func (m *MockGitHubClient) SetPullRequests(repo string, prs []types.PullRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pullRequests[repo] = prs
}

// SetDisplayName configures the resolved display name for a login.
func (m *MockGitHubClient) SetDisplayName(login, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayNames[login] = name
}

// SetError configures an error for OpenPullRequests on a repository.
func (m *MockGitHubClient) SetError(repo string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[repo] = err
}

// OpenPullRequests returns the configured PRs for a repository.
func (m *MockGitHubClient) OpenPullRequests(_ context.Context, repo string) ([]types.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, repo)

	if err := m.errors[repo]; err != nil {
		return nil, err
	}
	prs, ok := m.pullRequests[repo]
	if !ok {
		return nil, fmt.Errorf("repository not configured: %s", repo)
	}
	return prs, nil
}

// DisplayName returns the configured display name, falling back to the login
// like the real client.
func (m *MockGitHubClient) DisplayName(_ context.Context, login string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nameCalls = append(m.nameCalls, login)

	if name, ok := m.displayNames[login]; ok {
		return name
	}
	return login
}

// ListCalls returns the repositories passed to OpenPullRequests, in order.
func (m *MockGitHubClient) ListCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.listCalls...)
}

// NameCalls returns the logins passed to DisplayName, in order.
func (m *MockGitHubClient) NameCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nameCalls...)
}
