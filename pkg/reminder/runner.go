package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/review-reminder/pkg/github"
	"github.com/codeGROOVE-dev/review-reminder/pkg/schedule"
	"github.com/codeGROOVE-dev/review-reminder/pkg/slack"
	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

// TeamAll is the reserved team filter value that selects every team
// regardless of schedule.
const TeamAll = "all"

// Runner coordinates one reminder run across all configured teams.
type Runner struct {
	github     github.API
	slack      slack.API
	now        func() time.Time
	teamFilter string
	teams      []types.Team
	dryRun     bool
}

// Config holds configuration for the runner.
type Config struct {
	// TeamFilter restricts the run to one team by name, or to every team
	// when set to TeamAll. Empty means schedule-based selection.
	TeamFilter string

	// DryRun composes and logs messages without delivering them.
	DryRun bool

	// Now supplies the current instant; nil means time.Now. Tests inject a
	// fixed clock here.
	Now func() time.Time
}

// New creates a runner for the given teams.
func New(gh github.API, sl slack.API, teams []types.Team, cfg Config) *Runner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		github:     gh,
		slack:      sl,
		teams:      teams,
		teamFilter: cfg.TeamFilter,
		dryRun:     cfg.DryRun,
		now:        now,
	}
}

// Run processes every team sequentially. A failure in one team's pipeline is
// logged with the team's name and does not abort the remaining teams.
func (r *Runner) Run(ctx context.Context) {
	var processed, skipped, failed int

	for _, team := range r.teams {
		if !r.shouldProcess(team) {
			slog.Info("Skipping team", "team", team.Name)
			skipped++
			continue
		}

		if err := r.processTeam(ctx, team); err != nil {
			slog.Error("Failed to process team", "team", team.Name, "error", err)
			failed++
			continue
		}
		processed++
	}

	slog.Info("Run complete", "teams", len(r.teams), "processed", processed, "skipped", skipped, "failed", failed)
}

// shouldProcess decides eligibility: an explicit team filter bypasses the
// schedule entirely; otherwise the team's schedule decides, and a team
// without one only runs when explicitly selected.
func (r *Runner) shouldProcess(team types.Team) bool {
	switch {
	case r.teamFilter == TeamAll:
		return true
	case r.teamFilter != "":
		return team.Name == r.teamFilter
	case team.Schedule == "":
		return false
	}

	expr, err := schedule.Parse(team.Schedule)
	if err != nil {
		// Config validation catches this before a run normally starts.
		slog.Error("Invalid schedule for team", "team", team.Name, "schedule", team.Schedule, "error", err)
		return false
	}
	return expr.Matches(r.now())
}

func (r *Runner) processTeam(ctx context.Context, team types.Team) error {
	slog.Info("Processing team", "team", team.Name, "repositories", len(team.Repositories))

	groups, err := r.aggregate(ctx, team)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	msg := r.compose(ctx, team, groups)

	if r.dryRun {
		slog.Info("Dry run: skipping delivery", "team", team.Name, "channel", team.Channel, "plain", msg.IsPlain())
		return nil
	}

	if err := r.slack.PostMessage(ctx, team.Channel, msg); err != nil {
		return fmt.Errorf("delivery failed: %w", err)
	}

	slog.Info("Delivered reminder", "team", team.Name, "channel", team.Channel, "groups", len(groups))
	return nil
}
