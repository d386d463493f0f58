// Package summarize turns collected GitHub activity into a standup update
// written in the user's voice.
package summarize

import (
	"context"
	"fmt"
	"strings"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/model"
	"github.com/standup-agent/standup/internal/model/contract"
	"github.com/standup-agent/standup/internal/slack"
	"github.com/standup-agent/standup/internal/tasks"
)

// Input bundles everything the summarizer draws on for one standup.
type Input struct {
	Activity     *github.ActivityReport
	Tasks        []tasks.Task
	TeamMessages []slack.Message
	StyleBundle  string
}

func (in Input) empty() bool {
	return (in.Activity == nil || in.Activity.Empty()) && len(in.Tasks) == 0
}

type Summarizer struct {
	router model.Router
	model  string
}

func New(router model.Router, modelName string) *Summarizer {
	return &Summarizer{router: router, model: modelName}
}

// Summarize produces a fresh standup update from the collected activity
// and work log.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (string, error) {
	if in.empty() {
		return "", serrors.InvalidInput("no activity to summarize")
	}

	req := contract.CompletionRequest{
		Messages: []contract.Message{
			{Role: "system", Content: systemPrompt(in)},
			{Role: "user", Content: userPrompt(in)},
		},
	}

	resp, err := s.router.Route(ctx, s.model, req)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", serrors.Internal("model returned an empty summary")
	}
	return summary, nil
}

// Refine rewrites an existing summary per the user's feedback, keeping the
// underlying activity as grounding.
func (s *Summarizer) Refine(ctx context.Context, in Input, current, feedback string) (string, error) {
	if strings.TrimSpace(current) == "" {
		return "", serrors.InvalidInput("no summary to refine")
	}
	if strings.TrimSpace(feedback) == "" {
		return "", serrors.InvalidInput("feedback is required")
	}

	messages := []contract.Message{
		{Role: "system", Content: systemPrompt(in)},
	}
	if !in.empty() {
		messages = append(messages, contract.Message{Role: "user", Content: userPrompt(in)})
	}
	messages = append(messages,
		contract.Message{Role: "assistant", Content: current},
		contract.Message{Role: "user", Content: "Revise the standup above: " + feedback},
	)

	resp, err := s.router.Route(ctx, s.model, contract.CompletionRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", serrors.Internal("model returned an empty summary")
	}
	return summary, nil
}

func systemPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You write daily standup updates for a software engineer based on their GitHub activity. ")
	b.WriteString("Write in first person, stay factual, and never invent work that is not in the activity. ")
	b.WriteString("Group related items and keep the update short enough to read in under a minute.")

	if in.StyleBundle != "" {
		b.WriteString("\n\n## Style\n\n")
		b.WriteString(in.StyleBundle)
	}
	if len(in.TeamMessages) > 0 {
		b.WriteString("\n\n## Recent team standups\n\nMatch the level of detail your teammates use:\n")
		for _, msg := range in.TeamMessages {
			b.WriteString("\n---\n")
			b.WriteString(msg.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func userPrompt(in Input) string {
	var b strings.Builder

	if in.Activity != nil && !in.Activity.Empty() {
		writeActivity(&b, in.Activity)
	}

	if len(in.Tasks) > 0 {
		b.WriteString("\nWork log (what I said I was working on):\n")
		for _, task := range in.Tasks {
			fmt.Fprintf(&b, "- [%s] %s\n", task.Status, task.Title)
			if n := len(task.Updates); n > 0 {
				fmt.Fprintf(&b, "  latest note: %s\n", task.Updates[n-1].Note)
			}
		}
	}

	b.WriteString("\nWrite my standup update.")
	return b.String()
}

func writeActivity(b *strings.Builder, a *github.ActivityReport) {
	fmt.Fprintf(b, "GitHub activity for @%s over the last %d day(s):\n", a.Username, a.DaysBack)

	if len(a.PullRequests) > 0 {
		b.WriteString("\nPull requests:\n")
		for _, pr := range a.PullRequests {
			fmt.Fprintf(b, "- %s#%d %s (%s)\n", pr.Repo, pr.Number, pr.Title, prStatus(pr))
		}
	}
	if len(a.Issues) > 0 {
		b.WriteString("\nIssues:\n")
		for _, is := range a.Issues {
			fmt.Fprintf(b, "- %s#%d %s (%s, %s)\n", is.Repo, is.Number, is.Title, is.Relation, is.State)
		}
	}
	if len(a.Commits) > 0 {
		b.WriteString("\nCommits:\n")
		for _, c := range a.Commits {
			fmt.Fprintf(b, "- %s: %s\n", c.Repo, c.Message)
		}
	}
	if len(a.Reviews) > 0 {
		b.WriteString("\nReviews:\n")
		for _, r := range a.Reviews {
			fmt.Fprintf(b, "- %s#%d %s (%s)\n", r.Repo, r.PRNumber, r.Title, r.Relation)
		}
	}
	if len(a.Comments) > 0 {
		b.WriteString("\nDiscussion activity:\n")
		for _, c := range a.Comments {
			fmt.Fprintf(b, "- %s: %s\n", c.Repo, c.Title)
		}
	}
}

func prStatus(pr github.PullRequest) string {
	if pr.IsDraft {
		return "draft"
	}
	if pr.Status != "" {
		return pr.Status
	}
	return pr.State
}
