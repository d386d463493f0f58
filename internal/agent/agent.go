// Package agent wires collection, summarization, history, sessions, and the
// Slack publisher into the standup workflow.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/standup-agent/standup/internal/config"
	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/history"
	"github.com/standup-agent/standup/internal/model"
	"github.com/standup-agent/standup/internal/session"
	"github.com/standup-agent/standup/internal/slack"
	"github.com/standup-agent/standup/internal/style"
	"github.com/standup-agent/standup/internal/summarize"
	"github.com/standup-agent/standup/internal/tasks"
)

// SlackReader is the team-context side of the Slack client.
type SlackReader interface {
	ResolveChannelID(ctx context.Context, nameOrID string) (string, error)
	RecentStandups(ctx context.Context, channelID string, daysBack, limit int) ([]slack.Message, error)
	LatestStandupThread(ctx context.Context, channelID string, daysBack int) (string, error)
	ThreadReplies(ctx context.Context, channelID, threadTS string) ([]slack.Message, error)
}

type Agent struct {
	cfg        *config.Config
	collector  *github.Collector
	summarizer *summarize.Summarizer
	router     model.Router
	histStore  *history.Store
	sessStore  *session.Store
	taskStore  *tasks.Store
	publisher  *slack.Publisher
	reader     SlackReader
	run        *RunContext
}

type Options struct {
	Config     *config.Config
	Collector  *github.Collector
	Summarizer *summarize.Summarizer
	Router     model.Router
	History    *history.Store
	Sessions   *session.Store
	Tasks      *tasks.Store
	Publisher  *slack.Publisher
	Reader     SlackReader
}

func New(opts Options) *Agent {
	return &Agent{
		cfg:        opts.Config,
		collector:  opts.Collector,
		summarizer: opts.Summarizer,
		router:     opts.Router,
		histStore:  opts.History,
		sessStore:  opts.Sessions,
		taskStore:  opts.Tasks,
		publisher:  opts.Publisher,
		reader:     opts.Reader,
		run:        NewRunContext(),
	}
}

func (a *Agent) Run() *RunContext { return a.run }

func (a *Agent) Publisher() *slack.Publisher { return a.publisher }

// Generate collects fresh GitHub activity, pulls recent team standups for
// tone, and produces a summary in the configured style. The result is kept
// in the run context for refinement and staging.
func (a *Agent) Generate(ctx context.Context, daysBack int, quickStyle string) (string, error) {
	if daysBack <= 0 {
		daysBack = a.cfg.DefaultDaysBack
	}

	slog.Info("Collecting GitHub activity", "username", a.cfg.GithubUsername, "days_back", daysBack)

	activity, err := a.collector.Collect(ctx, daysBack)
	if err != nil {
		return "", serrors.Wrap(err, "collect activity")
	}
	a.run.SetActivity(activity, daysBack)
	a.loadWorkLog(daysBack)

	if activity.Empty() && len(a.run.Tasks()) == 0 {
		return "", serrors.NotFound(fmt.Sprintf("no GitHub activity or logged tasks in the last %d day(s)", daysBack))
	}

	a.loadTeamContext(ctx, daysBack)

	summary, err := a.summarizer.Summarize(ctx, a.summarizeInput(quickStyle))
	if err != nil {
		return "", err
	}

	a.run.SetSummary(summary)
	return summary, nil
}

// Refine rewrites the current summary per the user's feedback.
func (a *Agent) Refine(ctx context.Context, feedback string) (string, error) {
	current := a.run.Summary()
	if current == "" {
		return "", serrors.NotFound("no summary generated yet")
	}

	summary, err := a.summarizer.Refine(ctx, a.summarizeInput(""), current, feedback)
	if err != nil {
		return "", err
	}

	a.run.SetSummary(summary)
	return summary, nil
}

// SaveCurrent persists the current summary to history under today's date,
// or under a name when one is given. Semantic indexing happens best effort.
func (a *Agent) SaveCurrent(ctx context.Context, name string) (history.Record, error) {
	summary := a.run.Summary()
	if summary == "" {
		return history.Record{}, serrors.NotFound("no summary to save")
	}

	activity, _ := a.run.Activity()
	rec, err := a.histStore.Save(history.Record{
		Date:     time.Now().Format(history.DateFormat),
		Name:     name,
		Activity: activity,
		Summary:  summary,
	})
	if err != nil {
		return history.Record{}, err
	}

	if err := a.histStore.Index(ctx, a.Embedder(), rec); err != nil {
		slog.Warn("Semantic indexing failed, summary saved without it", "error", err)
	}

	return rec, nil
}

// StageForPublish stages the current summary for the configured channel,
// threading onto the latest team standup when one exists.
func (a *Agent) StageForPublish(ctx context.Context) error {
	summary := a.run.Summary()
	if summary == "" {
		return serrors.NotFound("no summary to publish")
	}
	if a.cfg.SlackChannel == "" {
		return serrors.Config("slack_channel is not configured")
	}
	if a.reader == nil {
		return serrors.Config("slack is not configured, set SLACK_BOT_TOKEN")
	}

	channelID, err := a.reader.ResolveChannelID(ctx, a.cfg.SlackChannel)
	if err != nil {
		return err
	}

	threadTS, err := a.reader.LatestStandupThread(ctx, channelID, 1)
	if err != nil {
		slog.Warn("Could not find today's standup thread, posting to channel", "error", err)
		threadTS = ""
	}

	return a.publisher.Stage(summary, channelID, threadTS)
}

// ChatTurn appends a user/assistant exchange to the session transcript.
// Assistant turns carrying a fresh summary are recorded with the summary
// kind so ResumeSession can find the latest draft.
func (a *Agent) ChatTurn(key, userText, assistantText, assistantKind string) error {
	if err := a.sessStore.Append(key, session.Turn{Role: session.RoleUser, Content: userText}); err != nil {
		return err
	}
	return a.sessStore.Append(key, session.Turn{Role: session.RoleAssistant, Content: assistantText, Kind: assistantKind})
}

// ResumeSession replays a stored transcript into the run context: the most
// recent summary turn becomes the current draft again. It returns the number
// of stored turns, zero for a new session.
func (a *Agent) ResumeSession(key string) (int, error) {
	turns, err := a.sessStore.Load(key)
	if err != nil {
		return 0, err
	}

	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == session.RoleAssistant && turns[i].Kind == session.KindSummary {
			a.run.SetSummary(turns[i].Content)
			break
		}
	}
	return len(turns), nil
}

// Embedder adapts the model router to the history store's embedding hook.
func (a *Agent) Embedder() history.Embedder {
	return embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		return a.router.RouteEmbedding(ctx, a.cfg.EmbeddingModel, text)
	})
}

func (a *Agent) summarizeInput(quickStyle string) summarize.Input {
	activity, _ := a.run.Activity()
	return summarize.Input{
		Activity:     activity,
		Tasks:        a.run.Tasks(),
		TeamMessages: a.run.TeamMessages(),
		StyleBundle:  style.Resolve(a.cfg.BaseDir, a.cfg.StyleInstructions, quickStyle),
	}
}

// loadWorkLog pulls the standup-relevant slice of the work log into the run
// context. A failing task store degrades to GitHub activity alone.
func (a *Agent) loadWorkLog(daysBack int) {
	if a.taskStore == nil {
		return
	}

	ts, err := a.taskStore.ForStandup(daysBack)
	if err != nil {
		slog.Warn("Could not read work log, skipping it", "error", err)
		return
	}
	a.run.SetTasks(ts)
}

func (a *Agent) loadTeamContext(ctx context.Context, daysBack int) {
	if a.reader == nil || a.cfg.SlackChannel == "" {
		return
	}

	channelID, err := a.reader.ResolveChannelID(ctx, a.cfg.SlackChannel)
	if err != nil {
		slog.Warn("Could not resolve slack channel, skipping team context", "channel", a.cfg.SlackChannel, "error", err)
		return
	}

	msgs, err := a.reader.RecentStandups(ctx, channelID, daysBack, 10)
	if err != nil {
		slog.Warn("Could not read team standups, skipping team context", "error", err)
		return
	}

	// Replies under the newest standup thread carry the team's follow-up
	// discussion, worth as much tone signal as the standups themselves.
	if len(msgs) > 0 {
		threadTS := msgs[0].ThreadTS
		if threadTS == "" {
			threadTS = msgs[0].Timestamp
		}
		replies, err := a.reader.ThreadReplies(ctx, channelID, threadTS)
		if err != nil {
			slog.Warn("Could not read standup thread replies", "error", err)
		} else {
			msgs = append(msgs, replies...)
		}
	}

	a.run.SetTeamMessages(msgs)
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
