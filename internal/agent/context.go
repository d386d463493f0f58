package agent

import (
	"sync"

	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/slack"
	"github.com/standup-agent/standup/internal/tasks"
)

// RunContext carries the working state of one interactive run: the collected
// activity, the team messages pulled for tone, and the summary as it evolves
// through refinement. It is shared between the chat loop and the publisher,
// so access is serialized.
type RunContext struct {
	mu sync.Mutex

	activity     *github.ActivityReport
	tasks        []tasks.Task
	teamMessages []slack.Message
	summary      string
	daysBack     int
}

func NewRunContext() *RunContext {
	return &RunContext{}
}

func (rc *RunContext) SetActivity(a *github.ActivityReport, daysBack int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.activity = a
	rc.daysBack = daysBack
}

func (rc *RunContext) Activity() (*github.ActivityReport, int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.activity, rc.daysBack
}

func (rc *RunContext) SetTasks(ts []tasks.Task) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.tasks = ts
}

func (rc *RunContext) Tasks() []tasks.Task {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.tasks
}

func (rc *RunContext) SetTeamMessages(msgs []slack.Message) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.teamMessages = msgs
}

func (rc *RunContext) TeamMessages() []slack.Message {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.teamMessages
}

func (rc *RunContext) SetSummary(s string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.summary = s
}

func (rc *RunContext) Summary() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.summary
}

// Reset clears everything gathered during the run.
func (rc *RunContext) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.activity = nil
	rc.tasks = nil
	rc.teamMessages = nil
	rc.summary = ""
	rc.daysBack = 0
}
