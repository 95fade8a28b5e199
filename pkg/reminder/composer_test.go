package reminder

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/review-reminder/pkg/internal/testutil"
	"github.com/codeGROOVE-dev/review-reminder/pkg/slack"
	"github.com/codeGROOVE-dev/review-reminder/pkg/types"
)

var testNow = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC) // Monday 09:00

func newTestRunner(gh *testutil.MockGitHubClient, sl *testutil.MockSlackClient, teams []types.Team, cfg Config) *Runner {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	return New(gh, sl, teams, cfg)
}

func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		days int
		want ageTier
	}{
		{0, tierFresh},
		{4, tierFresh},
		{5, tierAging},
		{9, tierAging},
		{10, tierStale},
		{365, tierStale},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.want, tierFor(tt.days))
		})
	}
}

func TestDaysOpen(t *testing.T) {
	assert.Equal(t, 0, daysOpen(testNow, testNow))
	assert.Equal(t, 0, daysOpen(testNow, testNow.Add(-23*time.Hour)))
	assert.Equal(t, 1, daysOpen(testNow, testNow.Add(-25*time.Hour)))
	assert.Equal(t, 6, daysOpen(testNow, daysAgo(6)))
	// Floor, not rounding: 6.9 days open is still 6 days.
	assert.Equal(t, 6, daysOpen(testNow, testNow.Add(-166*time.Hour)))
	// A clock skewed into the future never reports negative days.
	assert.Equal(t, 0, daysOpen(testNow, testNow.Add(2*time.Hour)))
}

func TestTruncateTitle(t *testing.T) {
	exactly100 := strings.Repeat("a", 100)
	assert.Equal(t, exactly100, truncateTitle(exactly100))

	title101 := strings.Repeat("a", 101)
	got := truncateTitle(title101)
	assert.Equal(t, exactly100+"…", got)
	assert.Equal(t, 101, len([]rune(got)))

	assert.Equal(t, "short", truncateTitle("short"))

	// Runes, not bytes: 100 multi-byte characters survive untouched.
	wide := strings.Repeat("é", 100)
	assert.Equal(t, wide, truncateTitle(wide))
	assert.Equal(t, strings.Repeat("é", 100)+"…", truncateTitle(strings.Repeat("é", 101)))
}

func TestComposeFallback(t *testing.T) {
	r := newTestRunner(testutil.NewMockGitHubClient(), testutil.NewMockSlackClient(), nil, Config{})
	team := types.Team{Name: "Core", Channel: "#core"}

	msg := r.compose(t.Context(), team, nil)
	assert.True(t, msg.IsPlain())
	assert.Equal(t, ":tada: No open PRs for Core!", msg.Text)
}

func TestComposeStructure(t *testing.T) {
	gh := testutil.NewMockGitHubClient()
	gh.SetDisplayName("alice", "Alice Smith")
	r := newTestRunner(gh, testutil.NewMockSlackClient(), nil, Config{})

	team := types.Team{Name: "Core", Channel: "#core"}
	groups := []RepoGroup{
		{Repo: "svc-a", PullRequests: []types.PullRequest{
			{Number: 7, Title: "Add widgets", URL: "https://github.com/acme/svc-a/pull/7", Author: "alice", CreatedAt: daysAgo(6)},
		}},
		{Repo: "svc-b", PullRequests: []types.PullRequest{
			{Number: 3, Title: "Fix the frobnicator", URL: "https://github.com/acme/svc-b/pull/3", Author: "bob", CreatedAt: daysAgo(12)},
			{Number: 4, Title: "Tidy docs", URL: "https://github.com/acme/svc-b/pull/4", Author: "bob", CreatedAt: daysAgo(1)},
		}},
	}

	msg := r.compose(t.Context(), team, groups)
	require.False(t, msg.IsPlain())

	// header, divider, repo + 1 line, repo + 2 lines, footer
	require.Len(t, msg.Blocks, 8)

	header, ok := msg.Blocks[0].(slack.Header)
	require.True(t, ok)
	assert.Equal(t, "🔔 Open PRs for Core", header.Text)

	_, ok = msg.Blocks[1].(slack.Divider)
	require.True(t, ok)

	repoA, ok := msg.Blocks[2].(slack.Section)
	require.True(t, ok)
	assert.Equal(t, "📦 *Repository:* *svc-a*", repoA.Text)

	line, ok := msg.Blocks[3].(slack.Section)
	require.True(t, ok)
	assert.Equal(t, ":large_orange_circle: *<https://github.com/acme/svc-a/pull/7|Add widgets>* - 👤 *Alice Smith* (alice) - ⏱ *6* days", line.Text)

	repoB, ok := msg.Blocks[4].(slack.Section)
	require.True(t, ok)
	assert.Equal(t, "📦 *Repository:* *svc-b*", repoB.Text)

	stale, ok := msg.Blocks[5].(slack.Section)
	require.True(t, ok)
	assert.Contains(t, stale.Text, ":red_circle:")
	assert.Contains(t, stale.Text, "*12* days")
	// No configured display name: the raw login stands in for both.
	assert.Contains(t, stale.Text, "*bob* (bob)")

	fresh, ok := msg.Blocks[6].(slack.Section)
	require.True(t, ok)
	assert.Contains(t, fresh.Text, ":large_green_circle:")

	footer, ok := msg.Blocks[7].(slack.Context)
	require.True(t, ok)
	assert.Equal(t, reviewFooter, footer.Text)
}

func TestComposeResolvesEveryAuthor(t *testing.T) {
	gh := testutil.NewMockGitHubClient()
	gh.SetDisplayName("alice", "Alice Smith")
	gh.SetDisplayName("bob", "Bob Jones")
	r := newTestRunner(gh, testutil.NewMockSlackClient(), nil, Config{})

	groups := []RepoGroup{
		{Repo: "svc-a", PullRequests: []types.PullRequest{
			{Number: 1, Title: "one", URL: "u1", Author: "alice", CreatedAt: daysAgo(1)},
			{Number: 2, Title: "two", URL: "u2", Author: "bob", CreatedAt: daysAgo(2)},
			{Number: 3, Title: "three", URL: "u3", Author: "alice", CreatedAt: daysAgo(3)},
		}},
	}

	r.compose(t.Context(), types.Team{Name: "Core"}, groups)
	// One resolution per line; the real client's run-scoped cache makes the
	// repeat a cache hit rather than a second lookup.
	assert.Equal(t, []string{"alice", "bob", "alice"}, gh.NameCalls())
}
