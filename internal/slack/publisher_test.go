package slack

import (
	"context"
	"errors"
	"testing"

	serrors "github.com/standup-agent/standup/internal/errors"
)

type fakePoster struct {
	posts []string
	err   error
}

func (f *fakePoster) Post(ctx context.Context, channelID, threadTS, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.posts = append(f.posts, text)
	return "1234.5678", nil
}

func TestPublishWithoutStagingIsRejected(t *testing.T) {
	poster := &fakePoster{}
	pub := NewPublisher(poster)

	_, err := pub.Publish(context.Background())
	if !serrors.IsCategory(err, serrors.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed, got %v", err)
	}
	if len(poster.posts) != 0 {
		t.Fatal("nothing may reach slack without confirmation")
	}
}

func TestPublishStagedButUnconfirmedIsRejected(t *testing.T) {
	poster := &fakePoster{}
	pub := NewPublisher(poster)

	if err := pub.Stage("standup text", "C123", ""); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	_, err := pub.Publish(context.Background())
	if !serrors.IsCategory(err, serrors.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed, got %v", err)
	}
	if len(poster.posts) != 0 {
		t.Fatal("staged but unconfirmed must not post")
	}
	if pub.State() != Staged {
		t.Errorf("rejected publish should leave staging intact, state %v", pub.State())
	}
}

func TestConfirmedPublishPostsAndResets(t *testing.T) {
	poster := &fakePoster{}
	pub := NewPublisher(poster)

	if err := pub.Stage("standup text", "C123", "9999.0001"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := pub.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	ts, err := pub.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ts != "1234.5678" {
		t.Errorf("expected message timestamp back, got %q", ts)
	}
	if len(poster.posts) != 1 || poster.posts[0] != "standup text" {
		t.Errorf("expected exactly one post, got %v", poster.posts)
	}

	if pub.State() != Unstaged {
		t.Errorf("expected reset after publish, state %v", pub.State())
	}

	// Second publish on the spent confirmation must fail.
	_, err = pub.Publish(context.Background())
	if !serrors.IsCategory(err, serrors.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed after reset, got %v", err)
	}
	if len(poster.posts) != 1 {
		t.Error("a stale confirmation fired twice")
	}
}

func TestFailedPublishStillResets(t *testing.T) {
	poster := &fakePoster{err: errors.New("slack is down")}
	pub := NewPublisher(poster)

	if err := pub.Stage("standup text", "C123", ""); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := pub.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if _, err := pub.Publish(context.Background()); err == nil {
		t.Fatal("expected publish failure to propagate")
	}
	if pub.State() != Unstaged {
		t.Errorf("expected reset after failed attempt, state %v", pub.State())
	}
}

func TestConfirmRequiresStaged(t *testing.T) {
	pub := NewPublisher(&fakePoster{})

	if err := pub.Confirm(); err == nil {
		t.Fatal("expected error confirming with nothing staged")
	}
}

func TestRestageClearsConfirmation(t *testing.T) {
	poster := &fakePoster{}
	pub := NewPublisher(poster)

	if err := pub.Stage("v1", "C123", ""); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if err := pub.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	// Editing after confirm re-stages, so the old confirmation must not
	// carry over to the new text.
	if err := pub.Stage("v2", "C123", ""); err != nil {
		t.Fatalf("restage failed: %v", err)
	}
	if pub.State() != Staged {
		t.Fatalf("expected staged after restage, state %v", pub.State())
	}

	_, err := pub.Publish(context.Background())
	if !serrors.IsCategory(err, serrors.ErrNotConfirmed) {
		t.Fatalf("expected not confirmed for restaged text, got %v", err)
	}
	if len(poster.posts) != 0 {
		t.Error("restaged text posted without a fresh confirm")
	}
}

func TestStageValidation(t *testing.T) {
	pub := NewPublisher(&fakePoster{})

	if err := pub.Stage("  ", "C123", ""); !serrors.IsCategory(err, serrors.ErrInvalidInput) {
		t.Errorf("expected invalid input for empty text, got %v", err)
	}
	if err := pub.Stage("text", "", ""); !serrors.IsCategory(err, serrors.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing channel, got %v", err)
	}
}

func TestReset(t *testing.T) {
	pub := NewPublisher(&fakePoster{})

	if err := pub.Stage("text", "C123", ""); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	pub.Reset()

	if pub.State() != Unstaged {
		t.Errorf("expected unstaged after reset, state %v", pub.State())
	}
	if pub.StagedText() != "" {
		t.Errorf("expected staged text cleared, got %q", pub.StagedText())
	}
}
