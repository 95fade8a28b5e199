package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// perPageLimit is the listing page size. Only the first page is fetched:
// repositories with more than 100 open pull requests are reported truncated
// at this cap, which is a known limit of the reminder.
const perPageLimit = 100

// OpenPullRequests fetches open pull requests for a repository in the
// client's organization, preserving API order. Drafts are included; filtering
// is the caller's concern.
func (c *Client) OpenPullRequests(ctx context.Context, repo string) ([]types.PullRequest, error) {
	slog.Info("Fetching open PRs for repository", "component", "api", "org", c.org, "repo", repo)
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls?state=open&per_page=%d",
		c.baseURL, url.PathEscape(c.org), url.PathEscape(repo), perPageLimit)

	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list PRs for %s: %w", repo, err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list PRs for %s (status %d)", repo, resp.StatusCode)
	}

	var prData []struct {
		CreatedAt string `json:"created_at"`
		Title     string `json:"title"`
		HTMLURL   string `json:"html_url"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
		Number int  `json:"number"`
		Draft  bool `json:"draft"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&prData); err != nil {
		return nil, fmt.Errorf("failed to decode PR list for %s: %w", repo, err)
	}

	if len(prData) == perPageLimit {
		slog.Warn("Repository hit the single-page listing cap; report may be truncated", "repo", repo, "cap", perPageLimit)
	}

	prs := make([]types.PullRequest, 0, len(prData))
	for _, pr := range prData {
		createdAt, err := time.Parse(time.RFC3339, pr.CreatedAt)
		if err != nil {
			slog.Warn("Failed to parse created_at time", "repo", repo, "pr", pr.Number, "error", err)
			createdAt = time.Now()
		}
		prs = append(prs, types.PullRequest{
			Number:    pr.Number,
			Title:     pr.Title,
			URL:       pr.HTMLURL,
			Author:    pr.User.Login,
			CreatedAt: createdAt,
			Draft:     pr.Draft,
		})
	}

	return prs, nil
}
