package slack

import (
	"context"
	"strings"
	"sync"

	serrors "github.com/standup-agent/standup/internal/errors"
)

// State tracks where a summary sits in the confirm-before-post flow.
type State int

const (
	// Unstaged means no summary is pending.
	Unstaged State = iota
	// Staged means a summary is held, awaiting confirmation.
	Staged
	// Confirmed means the next Publish call is allowed to post.
	Confirmed
)

func (s State) String() string {
	switch s {
	case Staged:
		return "staged"
	case Confirmed:
		return "confirmed"
	default:
		return "unstaged"
	}
}

// Poster is the posting side of Client, split out so the publisher can be
// exercised without a live workspace.
type Poster interface {
	Post(ctx context.Context, channelID, threadTS, text string) (string, error)
}

// Publisher gates every outgoing standup behind an explicit two-step
// confirmation. Stage holds the text, Confirm arms it, and only then does
// Publish reach Slack. Any publish attempt, successful or not, drops the
// machine back to Unstaged so a stale confirmation can never fire twice.
type Publisher struct {
	poster Poster

	mu        sync.Mutex
	state     State
	text      string
	channelID string
	threadTS  string
}

func NewPublisher(poster Poster) *Publisher {
	return &Publisher{poster: poster}
}

// Stage holds a summary for publication, replacing any previous staging and
// clearing a prior confirmation.
func (p *Publisher) Stage(text, channelID, threadTS string) error {
	if strings.TrimSpace(text) == "" {
		return serrors.InvalidInput("cannot stage an empty summary")
	}
	if channelID == "" {
		return serrors.InvalidInput("cannot stage without a channel")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Staged
	p.text = text
	p.channelID = channelID
	p.threadTS = threadTS
	return nil
}

// Confirm arms the staged summary. Confirming with nothing staged is an
// error.
func (p *Publisher) Confirm() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Staged {
		return serrors.InvalidInput("nothing staged to confirm")
	}
	p.state = Confirmed
	return nil
}

// Reset discards any staged summary and confirmation.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

// State reports the current machine state.
func (p *Publisher) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// StagedText returns the held summary text, or empty when nothing is staged.
func (p *Publisher) StagedText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Publish posts the confirmed summary and returns its message timestamp.
// Calling it in any state other than Confirmed fails with ErrNotConfirmed.
// Whatever the outcome, the machine returns to Unstaged.
func (p *Publisher) Publish(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != Confirmed {
		state := p.state
		p.mu.Unlock()
		if state == Staged {
			return "", serrors.NotConfirmed("summary staged but not confirmed")
		}
		return "", serrors.NotConfirmed("no summary staged")
	}

	text, channelID, threadTS := p.text, p.channelID, p.threadTS
	p.clearLocked()
	p.mu.Unlock()

	if p.poster == nil {
		return "", serrors.Config("slack is not configured, set SLACK_BOT_TOKEN")
	}

	ts, err := p.poster.Post(ctx, channelID, threadTS, text)
	if err != nil {
		return "", serrors.Wrap(err, "publish standup")
	}
	return ts, nil
}

func (p *Publisher) clearLocked() {
	p.state = Unstaged
	p.text = ""
	p.channelID = ""
	p.threadTS = ""
}
