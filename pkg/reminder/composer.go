package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/review-reminder/pkg/slack"
	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// Age tier thresholds, in whole days open. Boundaries are inclusive on the
// higher tier: a PR open exactly 5 days is aging, exactly 10 days is stale.
const (
	agingThresholdDays = 5
	staleThresholdDays = 10
)

// maxTitleRunes is the display length cap for PR titles, counted in runes.
const maxTitleRunes = 100

const reviewFooter = ":eyes: Please take a moment to review these pull requests."

// ageTier classifies a pull request by elapsed whole days since creation.
type ageTier int

const (
	tierFresh ageTier = iota
	tierAging
	tierStale
)

func tierFor(days int) ageTier {
	switch {
	case days >= staleThresholdDays:
		return tierStale
	case days >= agingThresholdDays:
		return tierAging
	default:
		return tierFresh
	}
}

// marker returns the severity emoji for the tier.
func (t ageTier) marker() string {
	switch t {
	case tierAging:
		return ":large_orange_circle:"
	case tierStale:
		return ":red_circle:"
	default:
		return ":large_green_circle:"
	}
}

// daysOpen returns the floor of elapsed whole days, never negative.
func daysOpen(now, createdAt time.Time) int {
	days := int(now.Sub(createdAt).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// truncateTitle cuts a title to maxTitleRunes runes and appends an ellipsis
// when anything was cut.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes]) + "…"
}

// compose turns a team's per-repository groups into a deliverable message: a
// Block Kit summary, or a plain celebratory text when there is nothing open.
// Display names go through the client's run-scoped cache, so a repeated
// author costs at most one lookup per run.
func (r *Runner) compose(ctx context.Context, team types.Team, groups []RepoGroup) slack.Message {
	if len(groups) == 0 {
		return slack.Plain(fmt.Sprintf(":tada: No open PRs for %s!", team.Name))
	}

	now := r.now()
	blocks := []slack.Block{
		slack.Header{Text: fmt.Sprintf("🔔 Open PRs for %s", team.Name)},
		slack.Divider{},
	}

	for _, group := range groups {
		blocks = append(blocks, slack.Section{Text: fmt.Sprintf("📦 *Repository:* *%s*", group.Repo)})

		for _, pr := range group.PullRequests {
			days := daysOpen(now, pr.CreatedAt)
			name := r.github.DisplayName(ctx, pr.Author)
			blocks = append(blocks, slack.Section{
				Text: fmt.Sprintf("%s *<%s|%s>* - 👤 *%s* (%s) - ⏱ *%d* days",
					tierFor(days).marker(), pr.URL, truncateTitle(pr.Title), name, pr.Author, days),
			})
		}
	}

	blocks = append(blocks, slack.Context{Text: reviewFooter})
	return slack.Structured(blocks...)
}
