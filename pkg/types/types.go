// Package types contains shared data structures used across the reminder system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import "time"

// Config is the team configuration document.
type Config struct {
	Teams []Team `json:"teams"`
}

// Team is a configured group with a delivery channel, a set of repositories
// to watch, and a set of member logins.
type Team struct {
	Name         string   `json:"name"`
	Channel      string   `json:"slack_channel"`
	Schedule     string   `json:"schedule,omitempty"`
	Repositories []string `json:"repositories"`
	Members      []string `json:"members"`
}

// MemberSet returns the team members as a set for exact, case-sensitive
// membership tests.
func (t Team) MemberSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.Members))
	for _, m := range t.Members {
		set[m] = struct{}{}
	}
	return set
}

// PullRequest is an immutable snapshot of an open pull request as returned
// by the listing API. It is never mutated after retrieval.
type PullRequest struct {
	CreatedAt time.Time
	Title     string
	URL       string
	Author    string
	Number    int
	Draft     bool
}
