package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/standup-agent/standup/internal/config"
	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/history"
	"github.com/standup-agent/standup/internal/model/contract"
	"github.com/standup-agent/standup/internal/session"
	"github.com/standup-agent/standup/internal/slack"
	"github.com/standup-agent/standup/internal/summarize"
	"github.com/standup-agent/standup/internal/tasks"
)

type fakeRunner struct{ prs string }

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--state open") && f.prs != "" {
		return []byte(f.prs), nil
	}
	return []byte("[]"), nil
}

type fakeRouter struct{ reply string }

func (f *fakeRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	return &contract.CompletionResponse{Content: f.reply}, nil
}

func (f *fakeRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeSlack struct {
	posts    []string
	threadTS string
	replies  []slack.Message
}

func (f *fakeSlack) ResolveChannelID(ctx context.Context, nameOrID string) (string, error) {
	return "C123", nil
}

func (f *fakeSlack) RecentStandups(ctx context.Context, channelID string, daysBack, limit int) ([]slack.Message, error) {
	return []slack.Message{{User: "U1", Text: "standup: shipped it", Timestamp: "1000.0001"}}, nil
}

func (f *fakeSlack) ThreadReplies(ctx context.Context, channelID, threadTS string) ([]slack.Message, error) {
	return f.replies, nil
}

func (f *fakeSlack) LatestStandupThread(ctx context.Context, channelID string, daysBack int) (string, error) {
	return f.threadTS, nil
}

func (f *fakeSlack) Post(ctx context.Context, channelID, threadTS, text string) (string, error) {
	f.posts = append(f.posts, text)
	return "1111.2222", nil
}

func newTestAgent(t *testing.T, runner *fakeRunner, reader *fakeSlack) *Agent {
	t.Helper()
	return newTestAgentAt(t, t.TempDir(), runner, reader)
}

func newTestAgentAt(t *testing.T, baseDir string, runner *fakeRunner, reader *fakeSlack) *Agent {
	t.Helper()

	cfg := &config.Config{
		GithubUsername:  "octocat",
		SummarizerModel: "gpt-5.2",
		EmbeddingModel:  "text-embedding-3-small",
		SlackChannel:    "#standup",
		DefaultDaysBack: 1,
		BaseDir:         baseDir,
	}

	router := &fakeRouter{reply: "Worked on the parser."}

	var publisher *slack.Publisher
	var sr SlackReader
	if reader != nil {
		publisher = slack.NewPublisher(reader)
		sr = reader
	} else {
		publisher = slack.NewPublisher(nil)
	}

	return New(Options{
		Config:     cfg,
		Collector:  github.NewCollector(runner, "octocat", nil, nil),
		Summarizer: summarize.New(router, cfg.SummarizerModel),
		Router:     router,
		History:    history.NewStore(baseDir),
		Sessions:   session.NewStore(baseDir),
		Tasks:      tasks.NewStore(baseDir),
		Publisher:  publisher,
		Reader:     sr,
	})
}

const onePR = `[{"number": 7, "title": "Add parser", "url": "u", "state": "open",
	"repository": {"nameWithOwner": "org/repo"}}]`

func TestGenerateProducesSummary(t *testing.T) {
	reader := &fakeSlack{}
	a := newTestAgent(t, &fakeRunner{prs: onePR}, reader)

	summary, err := a.Generate(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if summary != "Worked on the parser." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if a.Run().Summary() != summary {
		t.Error("summary not retained in run context")
	}
	if len(a.Run().TeamMessages()) != 1 {
		t.Error("team messages not loaded into run context")
	}
}

func TestGenerateIncludesThreadReplies(t *testing.T) {
	reader := &fakeSlack{replies: []slack.Message{{User: "U2", Text: "nice, the deploy is green"}}}
	a := newTestAgent(t, &fakeRunner{prs: onePR}, reader)

	if _, err := a.Generate(context.Background(), 0, ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	msgs := a.Run().TeamMessages()
	if len(msgs) != 2 {
		t.Fatalf("expected standup plus thread reply, got %d messages", len(msgs))
	}
	if msgs[1].Text != "nice, the deploy is green" {
		t.Errorf("thread reply missing from team context: %+v", msgs)
	}
}

func TestGenerateFromWorkLogAlone(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := tasks.NewStore(baseDir).Log("auth refactor", nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	a := newTestAgentAt(t, baseDir, &fakeRunner{}, &fakeSlack{})
	summary, err := a.Generate(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("Generate with work log only failed: %v", err)
	}
	if summary == "" {
		t.Error("expected a summary from logged tasks alone")
	}
	if len(a.Run().Tasks()) != 1 {
		t.Errorf("work log not loaded into run context: %+v", a.Run().Tasks())
	}
}

func TestGenerateNoActivityIsNotFound(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{}, &fakeSlack{})

	_, err := a.Generate(context.Background(), 1, "")
	if !serrors.IsCategory(err, serrors.ErrNotFound) {
		t.Errorf("expected not found for empty activity, got %v", err)
	}
}

func TestSaveCurrentPersistsToHistory(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{prs: onePR}, &fakeSlack{})
	ctx := context.Background()

	if _, err := a.Generate(ctx, 1, ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	rec, err := a.SaveCurrent(ctx, "")
	if err != nil {
		t.Fatalf("SaveCurrent failed: %v", err)
	}
	if rec.Summary != "Worked on the parser." {
		t.Errorf("wrong summary saved: %q", rec.Summary)
	}
	if rec.Activity == nil || len(rec.Activity.PullRequests) != 1 {
		t.Errorf("activity not attached to record: %+v", rec.Activity)
	}

	got, ok, err := history.NewStore(a.cfg.BaseDir).Get(rec.Date)
	if err != nil || !ok {
		t.Fatalf("saved record not readable: %v ok=%v", err, ok)
	}
	if got.Summary != rec.Summary {
		t.Errorf("round trip mismatch: %q vs %q", got.Summary, rec.Summary)
	}
}

func TestSaveCurrentWithoutSummary(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{}, &fakeSlack{})

	_, err := a.SaveCurrent(context.Background(), "")
	if !serrors.IsCategory(err, serrors.ErrNotFound) {
		t.Errorf("expected not found with nothing generated, got %v", err)
	}
}

func TestStageConfirmPublishFlow(t *testing.T) {
	reader := &fakeSlack{threadTS: "9999.0001"}
	a := newTestAgent(t, &fakeRunner{prs: onePR}, reader)
	ctx := context.Background()

	if _, err := a.Generate(ctx, 1, ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := a.StageForPublish(ctx); err != nil {
		t.Fatalf("StageForPublish failed: %v", err)
	}
	if a.Publisher().State() != slack.Staged {
		t.Fatalf("expected staged state, got %v", a.Publisher().State())
	}
	if len(reader.posts) != 0 {
		t.Fatal("staging must not post")
	}

	if _, err := a.Publisher().Publish(ctx); !serrors.IsCategory(err, serrors.ErrNotConfirmed) {
		t.Fatalf("unconfirmed publish must be rejected, got %v", err)
	}

	if err := a.Publisher().Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	ts, err := a.Publisher().Publish(ctx)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ts == "" {
		t.Error("expected message timestamp")
	}
	if len(reader.posts) != 1 || reader.posts[0] != "Worked on the parser." {
		t.Errorf("expected exactly one post of the summary, got %v", reader.posts)
	}
}

func TestStageForPublishRequiresChannel(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{prs: onePR}, &fakeSlack{})
	a.cfg.SlackChannel = ""
	ctx := context.Background()

	if _, err := a.Generate(ctx, 1, ""); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := a.StageForPublish(ctx); !serrors.IsCategory(err, serrors.ErrConfig) {
		t.Errorf("expected config error without channel, got %v", err)
	}
}

func TestChatTurnPersistsTranscript(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{}, &fakeSlack{})

	key := "chat_octocat_2026-08-28"
	if err := a.ChatTurn(key, "make it shorter", "Shorter version.", session.KindSummary); err != nil {
		t.Fatalf("ChatTurn failed: %v", err)
	}

	turns, err := session.NewStore(a.cfg.BaseDir).Load(key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != session.RoleUser || turns[1].Role != session.RoleAssistant {
		t.Errorf("roles wrong: %+v", turns)
	}
	if turns[1].Kind != session.KindSummary {
		t.Errorf("summary kind not persisted: %+v", turns[1])
	}
}

func TestResumeSessionRestoresLatestDraft(t *testing.T) {
	baseDir := t.TempDir()
	key := "chat_octocat_2026-08-28"

	first := newTestAgentAt(t, baseDir, &fakeRunner{}, &fakeSlack{})
	exchanges := []struct {
		user, assistant, kind string
	}{
		{"generate", "First draft.", session.KindSummary},
		{"shorter please", "Second draft.", session.KindSummary},
		{"/save", "Saved to history for 2026-08-28.", ""},
	}
	for _, ex := range exchanges {
		if err := first.ChatTurn(key, ex.user, ex.assistant, ex.kind); err != nil {
			t.Fatalf("ChatTurn failed: %v", err)
		}
	}

	// A later process starts with an empty run context and picks the
	// draft back up from the transcript.
	resumed := newTestAgentAt(t, baseDir, &fakeRunner{}, &fakeSlack{})
	if resumed.Run().Summary() != "" {
		t.Fatal("fresh agent should start without a summary")
	}

	turns, err := resumed.ResumeSession(key)
	if err != nil {
		t.Fatalf("ResumeSession failed: %v", err)
	}
	if turns != 6 {
		t.Errorf("expected 6 stored turns, got %d", turns)
	}
	if got := resumed.Run().Summary(); got != "Second draft." {
		t.Errorf("expected the latest summary restored, got %q", got)
	}

	// The restored draft is live again for the rest of the workflow.
	if _, err := resumed.SaveCurrent(context.Background(), "retro"); err != nil {
		t.Errorf("SaveCurrent after resume failed: %v", err)
	}
}

func TestResumeSessionNewKey(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{}, &fakeSlack{})

	turns, err := a.ResumeSession("chat_octocat_2026-08-30")
	if err != nil {
		t.Fatalf("ResumeSession failed: %v", err)
	}
	if turns != 0 {
		t.Errorf("expected 0 turns for a new session, got %d", turns)
	}
	if a.Run().Summary() != "" {
		t.Error("new session must not seed a summary")
	}
}

func TestRefineWithoutSummary(t *testing.T) {
	a := newTestAgent(t, &fakeRunner{}, &fakeSlack{})

	_, err := a.Refine(context.Background(), "shorter please")
	if !serrors.IsCategory(err, serrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
