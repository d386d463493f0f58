package main

import (
	"context"
	"fmt"
	"os"

	"github.com/standup-agent/standup/internal/agent"
	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/history"
	"github.com/standup-agent/standup/internal/model"
	"github.com/standup-agent/standup/internal/session"
	"github.com/standup-agent/standup/internal/slack"
	"github.com/standup-agent/standup/internal/summarize"
	"github.com/standup-agent/standup/internal/tasks"
)

// buildAgent assembles the full workflow from loaded config. The GitHub
// username falls back to whoever gh is authenticated as, and the Slack side
// stays nil when no token is present.
func buildAgent(ctx context.Context) (*agent.Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	runner := github.NewRunner()

	username := cfg.GithubUsername
	if username == "" {
		detected, err := github.DetectUsername(ctx, runner)
		if err != nil {
			return nil, fmt.Errorf("no github_username configured and gh auth detection failed: %w", err)
		}
		username = detected
		cfg.GithubUsername = detected
	}

	router := model.NewRouter()

	var (
		reader    agent.SlackReader
		publisher *slack.Publisher
	)
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		client := slack.NewClient(token)
		reader = client
		publisher = slack.NewPublisher(client)
	} else {
		publisher = slack.NewPublisher(nil)
	}

	return agent.New(agent.Options{
		Config:     cfg,
		Collector:  github.NewCollector(runner, username, cfg.IncludeRepos, cfg.ExcludeRepos),
		Summarizer: summarize.New(router, cfg.SummarizerModel),
		Router:     router,
		History:    history.NewStore(cfg.BaseDir),
		Sessions:   session.NewStore(cfg.BaseDir),
		Tasks:      tasks.NewStore(cfg.BaseDir),
		Publisher:  publisher,
		Reader:     reader,
	}), nil
}
