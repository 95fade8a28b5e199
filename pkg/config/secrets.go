package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/codeGROOVE-dev/gsm"
)

// Credential logical names, used both as environment variable names and as
// secret names in Google Secret Manager.
const (
	SecretGitHubToken = "GITHUB_TOKEN" //nolint:gosec // secret name, not a credential
	SecretGitHubOrg   = "GITHUB_ORG"
	SecretSlackToken  = "SLACK_TOKEN" //nolint:gosec // secret name, not a credential
)

// Credentials holds the resolved credentials for one run.
type Credentials struct {
	GitHubToken string
	GitHubOrg   string
	SlackToken  string
}

// ResolveCredentials resolves all required credentials, environment first,
// then Google Secret Manager. Any unresolved credential is fatal.
func ResolveCredentials(ctx context.Context) (*Credentials, error) {
	token, err := Resolve(ctx, SecretGitHubToken)
	if err != nil {
		return nil, err
	}
	org, err := Resolve(ctx, SecretGitHubOrg)
	if err != nil {
		return nil, err
	}
	slackToken, err := Resolve(ctx, SecretSlackToken)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		GitHubToken: token,
		GitHubOrg:   org,
		SlackToken:  slackToken,
	}, nil
}

// Resolve is the single resolution point for credentials: the environment
// wins, Google Secret Manager is the fallback.
func Resolve(ctx context.Context, name string) (string, error) {
	if value := os.Getenv(name); value != "" {
		return value, nil
	}

	slog.Info("Credential not in environment, trying Google Secret Manager", "name", name)
	value, err := gsm.Secret(ctx, name)
	if err != nil {
		return "", fmt.Errorf("credential %s not set in environment and not resolvable from secret manager: %w", name, err)
	}
	if value == "" {
		return "", fmt.Errorf("credential %s resolved to an empty value", name)
	}
	return value, nil
}
