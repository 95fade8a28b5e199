package github

import (
	"context"

	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// API defines the GitHub operations the reminder pipeline uses.
type API interface {
	// OpenPullRequests lists open PRs for a repository in the configured
	// organization (first page only, API order preserved).
	OpenPullRequests(ctx context.Context, repo string) ([]types.PullRequest, error)

	// DisplayName resolves a login to a display name, degrading to the
	// login itself on any failure.
	DisplayName(ctx context.Context, login string) string
}

var _ API = (*Client)(nil)
