package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/standup-agent/standup/internal/agent"
	"github.com/standup-agent/standup/internal/session"
	"github.com/standup-agent/standup/internal/slack"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Refine and publish your standup interactively",
	Long:  `Opens an interactive session: generate a summary, refine it with plain-language feedback, then stage and confirm before anything reaches Slack. The transcript is persisted and picked up again on the same day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildAgent(ctx)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		days, _ := cmd.Flags().GetInt("days")

		key := session.ResolveKey(name, cfg.GithubUsername, time.Now())
		repl := &chatREPL{
			agent:  a,
			key:    key,
			days:   days,
			reader: bufio.NewReader(os.Stdin),
		}
		return repl.start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("name", "n", "", "named session instead of today's default")
	chatCmd.Flags().IntP("days", "d", 0, "days of activity to look back (default from config)")
}

type chatREPL struct {
	agent  *agent.Agent
	key    string
	days   int
	reader *bufio.Reader
}

func (r *chatREPL) start(ctx context.Context) error {
	fmt.Printf("Standup session: %s\n", r.key)
	fmt.Println(hintStyle.Render("Commands: /generate [days], /style <hint>, /show, /save [name], /publish, /confirm, /reset, /exit. Anything else is refinement feedback."))

	turns, err := r.agent.ResumeSession(r.key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not resume session: %v\n", err)
	} else if turns > 0 {
		fmt.Printf("Resumed session with %d earlier turn(s).\n", turns)
		if r.agent.Run().Summary() != "" {
			fmt.Println(hintStyle.Render("Your latest draft is back. /show to review it."))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Print("> ")
		text, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		done, reply, summary := r.handle(ctx, text)
		if reply != "" {
			fmt.Println(reply)

			// Summary turns are recorded raw so resume gets the draft
			// itself, not the rendered frame around it.
			record, kind := reply, ""
			if summary != "" {
				record, kind = summary, session.KindSummary
			}
			if err := r.agent.ChatTurn(r.key, text, record, kind); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not record session turn: %v\n", err)
			}
		}
		if done {
			return nil
		}
	}
}

// handle runs one input line and returns whether the session should end,
// what to print back, and the raw summary when the line produced a new one.
func (r *chatREPL) handle(ctx context.Context, text string) (bool, string, string) {
	if !strings.HasPrefix(text, "/") {
		summary, err := r.agent.Refine(ctx, text)
		if err != nil {
			return false, "Could not refine: " + err.Error(), ""
		}
		return false, renderSummary(summary), summary
	}

	parts, err := shlex.Split(text)
	if err != nil {
		parts = strings.Fields(text)
	}
	if len(parts) == 0 {
		return false, "", ""
	}

	switch parts[0] {
	case "/exit", "/quit":
		return true, "Bye.", ""

	case "/generate":
		days := r.days
		if len(parts) > 1 {
			if n, convErr := strconv.Atoi(parts[1]); convErr == nil {
				days = n
			}
		}
		summary, err := r.agent.Generate(ctx, days, "")
		if err != nil {
			return false, "Could not generate: " + err.Error(), ""
		}
		return false, renderSummary(summary), summary

	case "/style":
		if len(parts) < 2 {
			return false, "Usage: /style <hint>, e.g. /style terse bullet points", ""
		}
		summary, err := r.agent.Generate(ctx, r.days, strings.Join(parts[1:], " "))
		if err != nil {
			return false, "Could not generate: " + err.Error(), ""
		}
		return false, renderSummary(summary), summary

	case "/show":
		summary := r.agent.Run().Summary()
		if summary == "" {
			return false, "No summary yet. Use /generate first.", ""
		}
		return false, renderSummary(summary), ""

	case "/save":
		name := ""
		if len(parts) > 1 {
			name = parts[1]
		}
		rec, err := r.agent.SaveCurrent(ctx, name)
		if err != nil {
			return false, "Could not save: " + err.Error(), ""
		}
		if rec.Name != "" {
			return false, fmt.Sprintf("Saved to history as %q (%s).", rec.Name, rec.Date), ""
		}
		return false, fmt.Sprintf("Saved to history for %s.", rec.Date), ""

	case "/publish":
		if err := r.agent.StageForPublish(ctx); err != nil {
			return false, "Could not stage: " + err.Error(), ""
		}
		return false, renderSummary(r.agent.Publisher().StagedText()) + "\nStaged for publishing. /confirm to post, /reset to back out.", ""

	case "/confirm":
		pub := r.agent.Publisher()
		if pub.State() != slack.Staged {
			return false, "Nothing staged. Use /publish first.", ""
		}
		if err := pub.Confirm(); err != nil {
			return false, "Could not confirm: " + err.Error(), ""
		}
		ts, err := pub.Publish(ctx)
		if err != nil {
			return false, "Publish failed: " + err.Error(), ""
		}
		return false, "Published to Slack (ts " + ts + ").", ""

	case "/reset":
		r.agent.Publisher().Reset()
		r.agent.Run().Reset()
		return false, "Cleared the current summary and staging.", ""

	default:
		return false, "Unknown command " + parts[0] + ". Try /generate, /save, /publish, /confirm, or /exit.", ""
	}
}
