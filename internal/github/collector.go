package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"
)

// Runner executes one external command and returns its stdout. The gh CLI is
// the only binary this package runs; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct {
	timeout time.Duration
}

const defaultCommandTimeout = 60 * time.Second

func NewRunner() Runner {
	return &execRunner{timeout: defaultCommandTimeout}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s failed: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// DetectUsername resolves the authenticated GitHub login via the gh CLI.
func DetectUsername(ctx context.Context, runner Runner) (string, error) {
	out, err := runner.Run(ctx, "gh", "api", "user", "--jq", ".login")
	if err != nil {
		return "", serrors.Wrap(err, "detect github username")
	}

	username := strings.TrimSpace(string(out))
	if username == "" {
		return "", serrors.NotFound("gh returned no authenticated user")
	}
	return username, nil
}

// Collector gathers one user's GitHub activity through the gh CLI.
type Collector struct {
	runner       Runner
	username     string
	includeRepos []string
	excludeRepos []string
}

func NewCollector(runner Runner, username string, includeRepos, excludeRepos []string) *Collector {
	return &Collector{
		runner:       runner,
		username:     username,
		includeRepos: includeRepos,
		excludeRepos: excludeRepos,
	}
}

const searchLimit = "50"

// Collect fetches all activity categories within the lookback window. Each
// category is issued and awaited sequentially.
func (c *Collector) Collect(ctx context.Context, daysBack int) (*ActivityReport, error) {
	if c.username == "" {
		return nil, serrors.InvalidInput("github username is required to collect activity")
	}
	if daysBack <= 0 {
		return nil, serrors.InvalidInput(fmt.Sprintf("lookback window must be positive, got %d", daysBack))
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")
	report := &ActivityReport{Username: c.username, DaysBack: daysBack}

	prs, err := c.pullRequests(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	report.PullRequests = prs

	issues, err := c.issues(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	report.Issues = issues

	commits, err := c.commits(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	report.Commits = commits

	reviews, err := c.reviews(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	report.Reviews = reviews

	comments, err := c.comments(ctx, cutoff, report.Issues)
	if err != nil {
		return nil, err
	}
	report.Comments = comments

	slog.Debug("GitHub activity collected",
		"username", c.username,
		"days_back", daysBack,
		"prs", len(report.PullRequests),
		"issues", len(report.Issues),
		"commits", len(report.Commits),
		"reviews", len(report.Reviews),
		"comments", len(report.Comments),
	)
	return report, nil
}

type rawRepo struct {
	NameWithOwner string `json:"nameWithOwner"`
}

type rawPR struct {
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	State      string  `json:"state"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
	IsDraft    bool    `json:"isDraft"`
	Repository rawRepo `json:"repository"`
	Author     struct {
		Login string `json:"login"`
	} `json:"author"`
	CommentsCount int `json:"commentsCount"`
}

func (c *Collector) pullRequests(ctx context.Context, cutoff string) ([]PullRequest, error) {
	var all []PullRequest

	open, err := c.searchPRs(ctx,
		"--author", c.username,
		"--state", "open",
		"--created=>="+cutoff,
		"--json", "number,title,url,state,createdAt,updatedAt,repository,isDraft",
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search open prs")
	}
	for _, pr := range open {
		all = append(all, c.toPullRequest(pr, "open"))
	}

	merged, err := c.searchPRs(ctx,
		"--author", c.username,
		"--merged",
		"--merged-at=>="+cutoff,
		"--json", "number,title,url,state,createdAt,updatedAt,repository,isDraft",
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search merged prs")
	}
	for _, pr := range merged {
		all = append(all, c.toPullRequest(pr, "merged"))
	}

	return filterPRs(all, c.repoAllowed), nil
}

func (c *Collector) issues(ctx context.Context, cutoff string) ([]Issue, error) {
	var all []Issue
	seen := make(map[string]bool)

	fetch := func(relation string, filterFlag string) error {
		args := []string{
			"search", "issues",
			filterFlag, c.username,
			"--updated=>=" + cutoff,
			"--json", "number,title,url,state,updatedAt,repository,labels",
			"--limit", searchLimit,
		}
		out, err := c.runner.Run(ctx, "gh", args...)
		if err != nil {
			return serrors.Wrap(err, "search "+relation+" issues")
		}

		var raw []struct {
			Number     int     `json:"number"`
			Title      string  `json:"title"`
			URL        string  `json:"url"`
			State      string  `json:"state"`
			UpdatedAt  string  `json:"updatedAt"`
			Repository rawRepo `json:"repository"`
			Labels     []struct {
				Name string `json:"name"`
			} `json:"labels"`
		}
		if err := json.Unmarshal(out, &raw); err != nil {
			return serrors.Wrap(err, "parse "+relation+" issues")
		}

		for _, iss := range raw {
			if seen[iss.URL] || !c.repoAllowed(iss.Repository.NameWithOwner) {
				continue
			}
			seen[iss.URL] = true

			labels := make([]string, 0, len(iss.Labels))
			for _, l := range iss.Labels {
				labels = append(labels, l.Name)
			}
			all = append(all, Issue{
				Number:    iss.Number,
				Title:     iss.Title,
				URL:       iss.URL,
				State:     iss.State,
				Relation:  relation,
				Repo:      iss.Repository.NameWithOwner,
				Labels:    labels,
				UpdatedAt: iss.UpdatedAt,
			})
		}
		return nil
	}

	if err := fetch("assigned", "--assignee"); err != nil {
		return nil, err
	}
	if err := fetch("created", "--author"); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Collector) commits(ctx context.Context, cutoff string) ([]Commit, error) {
	out, err := c.runner.Run(ctx, "gh",
		"search", "commits",
		"--author", c.username,
		"--author-date=>="+cutoff,
		"--json", "sha,commit,url,repository",
		"--limit", searchLimit,
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search commits")
	}

	var raw []struct {
		SHA    string `json:"sha"`
		URL    string `json:"url"`
		Commit struct {
			Message string `json:"message"`
			Author  struct {
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Repository rawRepo `json:"repository"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, serrors.Wrap(err, "parse commits")
	}

	var commits []Commit
	for _, cm := range raw {
		if !c.repoAllowed(cm.Repository.NameWithOwner) {
			continue
		}
		message := cm.Commit.Message
		if i := strings.IndexByte(message, '\n'); i >= 0 {
			message = message[:i]
		}
		commits = append(commits, Commit{
			SHA:        cm.SHA,
			Message:    message,
			URL:        cm.URL,
			Repo:       cm.Repository.NameWithOwner,
			AuthoredAt: cm.Commit.Author.Date,
		})
	}
	return commits, nil
}

func (c *Collector) reviews(ctx context.Context, cutoff string) ([]Review, error) {
	var all []Review

	given, err := c.searchPRs(ctx,
		"--reviewed-by", c.username,
		"--updated=>="+cutoff,
		"--json", "number,title,url,state,repository,author",
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search reviews given")
	}
	for _, pr := range given {
		// Exclude self-reviews
		if pr.Author.Login == c.username || !c.repoAllowed(pr.Repository.NameWithOwner) {
			continue
		}
		all = append(all, Review{
			PRNumber: pr.Number,
			Title:    pr.Title,
			URL:      pr.URL,
			State:    pr.State,
			Relation: "given",
			Repo:     pr.Repository.NameWithOwner,
			Author:   pr.Author.Login,
		})
	}

	received, err := c.searchPRs(ctx,
		"--author", c.username,
		"--updated=>="+cutoff,
		"--json", "number,title,url,state,repository,commentsCount",
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search reviews received")
	}
	for _, pr := range received {
		// Comment count is the proxy for review activity on own PRs
		if pr.CommentsCount == 0 || !c.repoAllowed(pr.Repository.NameWithOwner) {
			continue
		}
		all = append(all, Review{
			PRNumber: pr.Number,
			Title:    pr.Title,
			URL:      pr.URL,
			State:    pr.State,
			Relation: "received",
			Repo:     pr.Repository.NameWithOwner,
			Comments: pr.CommentsCount,
		})
	}

	return all, nil
}

// comments finds threads the user commented on without owning them. Issues
// already collected as authored or assigned are skipped so the category
// stays discussion-only.
func (c *Collector) comments(ctx context.Context, cutoff string, owned []Issue) ([]Comment, error) {
	seen := make(map[string]bool, len(owned))
	for _, iss := range owned {
		seen[iss.URL] = true
	}

	out, err := c.runner.Run(ctx, "gh",
		"search", "issues",
		"--commenter", c.username,
		"--updated=>="+cutoff,
		"--json", "title,url,updatedAt,repository",
		"--limit", searchLimit,
	)
	if err != nil {
		return nil, serrors.Wrap(err, "search commented threads")
	}

	var raw []struct {
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		UpdatedAt  string  `json:"updatedAt"`
		Repository rawRepo `json:"repository"`
	}
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, serrors.Wrap(err, "parse commented threads")
	}

	var comments []Comment
	for _, th := range raw {
		if seen[th.URL] || !c.repoAllowed(th.Repository.NameWithOwner) {
			continue
		}
		comments = append(comments, Comment{
			URL:       th.URL,
			Title:     th.Title,
			Repo:      th.Repository.NameWithOwner,
			UpdatedAt: th.UpdatedAt,
		})
	}
	return comments, nil
}

func (c *Collector) searchPRs(ctx context.Context, filters ...string) ([]rawPR, error) {
	args := append([]string{"search", "prs"}, filters...)
	args = append(args, "--limit", searchLimit)

	out, err := c.runner.Run(ctx, "gh", args...)
	if err != nil {
		return nil, err
	}

	var raw []rawPR
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse pr search output: %w", err)
	}
	return raw, nil
}

func (c *Collector) toPullRequest(pr rawPR, status string) PullRequest {
	return PullRequest{
		Number:    pr.Number,
		Title:     pr.Title,
		URL:       pr.URL,
		State:     pr.State,
		Status:    status,
		Repo:      pr.Repository.NameWithOwner,
		IsDraft:   pr.IsDraft,
		CreatedAt: pr.CreatedAt,
		UpdatedAt: pr.UpdatedAt,
	}
}

func (c *Collector) repoAllowed(repo string) bool {
	for _, excluded := range c.excludeRepos {
		if repo == excluded {
			return false
		}
	}
	if len(c.includeRepos) == 0 {
		return true
	}
	for _, included := range c.includeRepos {
		if repo == included {
			return true
		}
	}
	return false
}

func filterPRs(prs []PullRequest, allowed func(string) bool) []PullRequest {
	var out []PullRequest
	for _, pr := range prs {
		if allowed(pr.Repo) {
			out = append(out, pr)
		}
	}
	return out
}
