// Package reminder implements the aggregation-and-notification pipeline: per
// team, decide whether the reminder is due, collect the team's open pull
// requests, compose a summary message, and deliver it.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// RepoGroup holds the relevant pull requests for one repository. Groups keep
// the team's repository order, and pull requests keep the listing API order.
type RepoGroup struct {
	Repo         string
	PullRequests []types.PullRequest
}

// aggregate collects the open pull requests relevant to a team: non-draft,
// authored by a team member (exact, case-sensitive login match). Repositories
// with nothing relevant are omitted. A listing failure for any repository
// fails the whole team: a silently incomplete report is worse than a visibly
// failed one.
func (r *Runner) aggregate(ctx context.Context, team types.Team) ([]RepoGroup, error) {
	members := team.MemberSet()

	var groups []RepoGroup
	for _, repo := range team.Repositories {
		prs, err := r.github.OpenPullRequests(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", repo, err)
		}

		var relevant []types.PullRequest
		for _, pr := range prs {
			if pr.Draft {
				continue
			}
			if _, ok := members[pr.Author]; !ok {
				continue
			}
			relevant = append(relevant, pr)
		}

		slog.Info("Aggregated repository", "team", team.Name, "repo", repo, "open", len(prs), "relevant", len(relevant))
		if len(relevant) > 0 {
			groups = append(groups, RepoGroup{Repo: repo, PullRequests: relevant})
		}
	}

	return groups, nil
}
