// Package main implements a one-shot job that reminds teams about their open
// pull requests on Slack. Each run decides per team whether its reminder is
// due right now, collects the team's open PRs, and posts a summary to the
// team's channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/codeGROOVE-dev/review-reminder/pkg/config"
	"github.com/codeGROOVE-dev/review-reminder/pkg/github"
	"github.com/codeGROOVE-dev/review-reminder/pkg/reminder"
	"github.com/codeGROOVE-dev/review-reminder/pkg/slack"
)

var (
	configPath = flag.String("config", "", "Path to the team configuration file (default: CONFIG_PATH or config.yaml)")
	teamFilter = flag.String("team", "", "Process only this team, or \"all\" for every team regardless of schedule (default: TEAM_NAME)")
	dryRun     = flag.Bool("dry-run", false, "Compose messages without posting to Slack")

	// GitHub App authentication flags (alternative to GITHUB_TOKEN).
	appID      = flag.String("app-id", "", "GitHub App ID for authentication")
	appKeyPath = flag.String("app-key-path", "", "Path to GitHub App private key file")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Posts open pull request reminders to each team's Slack channel.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_TOKEN   - GitHub token (or a secret name in Google Secret Manager)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_ORG     - GitHub organization the repositories belong to\n")
	fmt.Fprintf(os.Stderr, "  SLACK_TOKEN    - Slack bot token\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_APP_ID  - GitHub App ID (App auth instead of GITHUB_TOKEN)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_APP_KEY - GitHub App private key content\n")
	fmt.Fprintf(os.Stderr, "  CONFIG_PATH    - Team configuration file path\n")
	fmt.Fprintf(os.Stderr, "  TEAM_NAME      - Team override (a team name, or \"all\")\n")
}

func init() {
	flag.Usage = usage
}

func main() {
	flag.Parse()
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	settings, err := config.LoadSettings()
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		return 1
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(settings.LogLevel),
	}))
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = settings.ConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("Failed to load team configuration", "error", err)
		return 1
	}

	filter := *teamFilter
	if filter == "" {
		filter = settings.TeamFilter
	}

	// With App authentication the personal token is not needed; everything
	// else still resolves environment-first with a secret-manager fallback.
	useAppAuth := *appID != "" || os.Getenv("GITHUB_APP_ID") != ""

	var ghToken, org, slackToken string
	if useAppAuth {
		if org, err = config.Resolve(ctx, config.SecretGitHubOrg); err != nil {
			slog.Error("Failed to resolve credential", "error", err)
			return 1
		}
		if slackToken, err = config.Resolve(ctx, config.SecretSlackToken); err != nil {
			slog.Error("Failed to resolve credential", "error", err)
			return 1
		}
	} else {
		creds, err := config.ResolveCredentials(ctx)
		if err != nil {
			slog.Error("Failed to resolve credentials", "error", err)
			return 1
		}
		ghToken, org, slackToken = creds.GitHubToken, creds.GitHubOrg, creds.SlackToken
	}

	ghClient, err := github.New(ctx, github.Config{
		Token:       ghToken,
		Org:         org,
		HTTPTimeout: settings.HTTPTimeout,
		UseAppAuth:  useAppAuth,
		AppID:       *appID,
		AppKeyPath:  *appKeyPath,
	})
	if err != nil {
		slog.Error("Failed to create GitHub client", "error", err)
		return 1
	}

	slackClient, err := slack.New(slack.Config{
		Token:       slackToken,
		HTTPTimeout: settings.HTTPTimeout,
	})
	if err != nil {
		slog.Error("Failed to create Slack client", "error", err)
		return 1
	}

	slog.Info("Starting reminder run", "teams", len(cfg.Teams), "org", org, "filter", filter, "dry_run", *dryRun)
	runner := reminder.New(ghClient, slackClient, cfg.Teams, reminder.Config{
		TeamFilter: filter,
		DryRun:     *dryRun,
	})
	runner.Run(ctx)
	return 0
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
