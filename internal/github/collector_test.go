package github

import (
	"context"
	"errors"
	"strings"
	"testing"

	serrors "github.com/standup-agent/standup/internal/errors"
)

// fakeRunner maps a matched substring of the gh arguments to canned output.
type fakeRunner struct {
	responses map[string]string
	calls     [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	joined := strings.Join(args, " ")
	for needle, out := range f.responses {
		if strings.Contains(joined, needle) {
			return []byte(out), nil
		}
	}
	return []byte("[]"), nil
}

func TestDetectUsername(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"api user": "octocat\n",
	}}

	username, err := DetectUsername(context.Background(), runner)
	if err != nil {
		t.Fatalf("DetectUsername failed: %v", err)
	}
	if username != "octocat" {
		t.Errorf("expected octocat, got %q", username)
	}
}

func TestDetectUsernameEmpty(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"api user": "  \n",
	}}

	_, err := DetectUsername(context.Background(), runner)
	if !serrors.IsCategory(err, serrors.ErrNotFound) {
		t.Errorf("expected not found for blank login, got %v", err)
	}
}

func TestCollectAssemblesReport(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"--state open": `[{"number": 7, "title": "Add parser", "url": "https://github.com/org/repo/pull/7",
			"state": "open", "isDraft": true, "repository": {"nameWithOwner": "org/repo"}}]`,
		"--merged": `[{"number": 5, "title": "Fix cache", "url": "https://github.com/org/repo/pull/5",
			"state": "closed", "repository": {"nameWithOwner": "org/repo"}}]`,
		"--assignee": `[{"number": 12, "title": "Flaky test", "url": "https://github.com/org/repo/issues/12",
			"state": "open", "repository": {"nameWithOwner": "org/repo"}, "labels": [{"name": "bug"}]}]`,
		"search issues --author": `[{"number": 12, "title": "Flaky test", "url": "https://github.com/org/repo/issues/12",
			"state": "open", "repository": {"nameWithOwner": "org/repo"}}]`,
		"search commits": `[{"sha": "abc123", "url": "https://github.com/org/repo/commit/abc123",
			"commit": {"message": "fix parser\n\nlong body", "author": {"date": "2026-08-28"}},
			"repository": {"nameWithOwner": "org/repo"}}]`,
		"--reviewed-by": `[{"number": 9, "title": "Teammate PR", "url": "https://github.com/org/repo/pull/9",
			"state": "open", "repository": {"nameWithOwner": "org/repo"}, "author": {"login": "teammate"}}]`,
		"search prs --author octocat --updated": `[{"number": 7, "title": "Add parser",
			"url": "https://github.com/org/repo/pull/7", "state": "open",
			"repository": {"nameWithOwner": "org/repo"}, "commentsCount": 3}]`,
		"--commenter": `[{"title": "Flaky test", "url": "https://github.com/org/repo/issues/12",
			"repository": {"nameWithOwner": "org/repo"}},
			{"title": "Design discussion", "url": "https://github.com/org/repo/issues/30",
			"repository": {"nameWithOwner": "org/repo"}, "updatedAt": "2026-08-28"}]`,
	}}

	c := NewCollector(runner, "octocat", nil, nil)
	report, err := c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if report.Username != "octocat" || report.DaysBack != 1 {
		t.Errorf("report header wrong: %+v", report)
	}
	if report.Empty() {
		t.Fatal("expected a non-empty report")
	}

	if len(report.PullRequests) != 2 {
		t.Fatalf("expected 2 prs, got %d", len(report.PullRequests))
	}
	if report.PullRequests[0].Status != "open" || !report.PullRequests[0].IsDraft {
		t.Errorf("open pr wrong: %+v", report.PullRequests[0])
	}
	if report.PullRequests[1].Status != "merged" {
		t.Errorf("merged pr wrong: %+v", report.PullRequests[1])
	}

	// The same issue URL arrives via both the assigned and created searches
	// and must be deduplicated.
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 deduplicated issue, got %d", len(report.Issues))
	}
	if report.Issues[0].Relation != "assigned" {
		t.Errorf("first relation wins, got %q", report.Issues[0].Relation)
	}
	if len(report.Issues[0].Labels) != 1 || report.Issues[0].Labels[0] != "bug" {
		t.Errorf("labels not flattened: %v", report.Issues[0].Labels)
	}

	if len(report.Commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(report.Commits))
	}
	if report.Commits[0].Message != "fix parser" {
		t.Errorf("expected first line only, got %q", report.Commits[0].Message)
	}

	if len(report.Reviews) != 2 {
		t.Fatalf("expected reviews given and received, got %d", len(report.Reviews))
	}
	if report.Reviews[0].Relation != "given" || report.Reviews[0].Author != "teammate" {
		t.Errorf("given review wrong: %+v", report.Reviews[0])
	}
	if report.Reviews[1].Relation != "received" || report.Reviews[1].Comments != 3 {
		t.Errorf("received review wrong: %+v", report.Reviews[1])
	}

	// Commented threads already collected as owned issues are skipped.
	if len(report.Comments) != 1 {
		t.Fatalf("expected 1 discussion-only comment, got %d", len(report.Comments))
	}
	if report.Comments[0].Title != "Design discussion" || report.Comments[0].Repo != "org/repo" {
		t.Errorf("comment wrong: %+v", report.Comments[0])
	}
}

func TestCollectExcludesSelfReviews(t *testing.T) {
	runner := &fakeRunner{responses: map[string]string{
		"--reviewed-by": `[{"number": 9, "title": "My own PR", "url": "https://github.com/org/repo/pull/9",
			"state": "open", "repository": {"nameWithOwner": "org/repo"}, "author": {"login": "octocat"}}]`,
	}}

	c := NewCollector(runner, "octocat", nil, nil)
	report, err := c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(report.Reviews) != 0 {
		t.Errorf("self-review should be dropped, got %+v", report.Reviews)
	}
}

func TestCollectRepoFilters(t *testing.T) {
	prs := `[{"number": 1, "title": "A", "url": "u1", "state": "open", "repository": {"nameWithOwner": "org/keep"}},
		{"number": 2, "title": "B", "url": "u2", "state": "open", "repository": {"nameWithOwner": "org/drop"}}]`
	runner := &fakeRunner{responses: map[string]string{"--state open": prs}}

	c := NewCollector(runner, "octocat", nil, []string{"org/drop"})
	report, err := c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(report.PullRequests) != 1 || report.PullRequests[0].Repo != "org/keep" {
		t.Errorf("exclude filter not applied: %+v", report.PullRequests)
	}

	c = NewCollector(runner, "octocat", []string{"org/keep"}, nil)
	report, err = c.Collect(context.Background(), 1)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(report.PullRequests) != 1 || report.PullRequests[0].Repo != "org/keep" {
		t.Errorf("include filter not applied: %+v", report.PullRequests)
	}
}

func TestCollectValidation(t *testing.T) {
	c := NewCollector(&fakeRunner{}, "", nil, nil)
	if _, err := c.Collect(context.Background(), 1); !serrors.IsCategory(err, serrors.ErrInvalidInput) {
		t.Errorf("expected invalid input without username, got %v", err)
	}

	c = NewCollector(&fakeRunner{}, "octocat", nil, nil)
	if _, err := c.Collect(context.Background(), 0); !serrors.IsCategory(err, serrors.ErrInvalidInput) {
		t.Errorf("expected invalid input for zero lookback, got %v", err)
	}
}

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, errors.New("gh: not logged in")
}

func TestCollectPropagatesRunnerErrors(t *testing.T) {
	c := NewCollector(failingRunner{}, "octocat", nil, nil)
	if _, err := c.Collect(context.Background(), 1); err == nil {
		t.Fatal("expected runner failure to propagate")
	}
}
