// Package slack provides the team-standup read surface and the staged
// publish writer on top of the Slack Web API.
package slack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"

	"github.com/slack-go/slack"
)

// Message is one channel or thread message, reduced to the fields the
// summarizer cares about.
type Message struct {
	User      string
	Text      string
	Timestamp string
	ThreadTS  string
}

type Client struct {
	api *slack.Client
}

func NewClient(token string) *Client {
	return &Client{api: slack.New(token)}
}

// ResolveChannelID resolves a channel name (with or without #) to its ID.
// Values that already look like IDs pass through untouched.
func (c *Client) ResolveChannelID(ctx context.Context, nameOrID string) (string, error) {
	if strings.HasPrefix(nameOrID, "C") || strings.HasPrefix(nameOrID, "G") {
		return nameOrID, nil
	}

	name := strings.TrimPrefix(nameOrID, "#")
	cursor := ""
	for {
		channels, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:  []string{"public_channel", "private_channel"},
			Cursor: cursor,
			Limit:  200,
		})
		if err != nil {
			return "", serrors.Wrap(err, "list channels")
		}

		for _, ch := range channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}

		if next == "" {
			return "", serrors.NotFound("slack channel " + nameOrID)
		}
		cursor = next
	}
}

// RecentStandups returns standup-shaped messages posted to a channel within
// the lookback window, newest first.
func (c *Client) RecentStandups(ctx context.Context, channelID string, daysBack, limit int) ([]Message, error) {
	oldest := strconv.FormatInt(time.Now().AddDate(0, 0, -daysBack).Unix(), 10)

	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Oldest:    oldest,
		Limit:     100,
	})
	if err != nil {
		return nil, serrors.Wrap(err, "read channel history")
	}

	var out []Message
	for _, msg := range resp.Messages {
		if !looksLikeStandup(msg.Text) {
			continue
		}
		out = append(out, Message{
			User:      msg.User,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
			ThreadTS:  msg.ThreadTimestamp,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// LatestStandupThread finds the newest standup thread starter in the channel
// and returns its thread timestamp, or empty if none exists in the window.
func (c *Client) LatestStandupThread(ctx context.Context, channelID string, daysBack int) (string, error) {
	msgs, err := c.RecentStandups(ctx, channelID, daysBack, 0)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}

	// History is newest first
	first := msgs[0]
	if first.ThreadTS != "" {
		return first.ThreadTS, nil
	}
	return first.Timestamp, nil
}

// ThreadReplies returns the replies in a thread, excluding the parent.
func (c *Client) ThreadReplies(ctx context.Context, channelID, threadTS string) ([]Message, error) {
	msgs, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
	})
	if err != nil {
		return nil, serrors.Wrap(err, "read thread replies")
	}

	var out []Message
	for i, msg := range msgs {
		if i == 0 {
			continue
		}
		out = append(out, Message{
			User:      msg.User,
			Text:      msg.Text,
			Timestamp: msg.Timestamp,
			ThreadTS:  msg.ThreadTimestamp,
		})
	}
	return out, nil
}

// Post sends a message, optionally as a thread reply, and returns its
// timestamp.
func (c *Client) Post(ctx context.Context, channelID, threadTS, text string) (string, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", serrors.Wrap(err, fmt.Sprintf("post to channel %s", channelID))
	}
	return ts, nil
}

func looksLikeStandup(text string) bool {
	return strings.Contains(strings.ToLower(text), "standup")
}
