package config

import (
	"fmt"
	"os"
	"strings"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

// Config is the merged configuration record for one run. It is loaded once at
// process start and never mutated afterwards; SetKey rewrites the persisted
// JSON for the next run instead.
type Config struct {
	GithubUsername    string   `koanf:"github_username"`
	CoordinatorModel  string   `koanf:"coordinator_model"`
	DataGathererModel string   `koanf:"data_gatherer_model"`
	SummarizerModel   string   `koanf:"summarizer_model"`
	EmbeddingModel    string   `koanf:"embedding_model"`
	SlackChannel      string   `koanf:"slack_channel"`
	StyleInstructions string   `koanf:"style_instructions"`
	DefaultDaysBack   int      `koanf:"default_days_back"`
	HistoryDaysToKeep int      `koanf:"history_days_to_keep"`
	IncludeRepos      []string `koanf:"include_repos"`
	ExcludeRepos      []string `koanf:"exclude_repos"`
	ReminderSchedule  string   `koanf:"reminder_schedule"`
	LogLevel          string   `koanf:"log_level"`

	// Resolved at load time, not persisted.
	BaseDir string `koanf:"-"`
}

const (
	DefaultModel             = "gpt-5.2"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultDaysBack          = 1
	DefaultHistoryDaysToKeep = 30
	DefaultReminderSchedule  = "0 9 * * 1-5"
	DefaultLogLevel          = "info"

	envPrefix = "STANDUP_"
)

// Load merges configuration sources with strict precedence: environment
// variables over the persisted config.json over built-in defaults. A missing
// config file falls through silently; a malformed one is a configuration
// error.
func Load(cmd *cobra.Command) (*Config, error) {
	baseDir, err := store.ResolveBaseDir(flagValue(cmd, "config-dir"))
	if err != nil {
		return nil, serrors.Wrap(err, "resolve config dir")
	}

	k := koanf.New(".")

	defaults := map[string]interface{}{
		"coordinator_model":    DefaultModel,
		"data_gatherer_model":  DefaultModel,
		"summarizer_model":     DefaultModel,
		"embedding_model":      DefaultEmbeddingModel,
		"default_days_back":    DefaultDaysBack,
		"history_days_to_keep": DefaultHistoryDaysToKeep,
		"reminder_schedule":    DefaultReminderSchedule,
		"log_level":            DefaultLogLevel,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := store.ConfigPath(baseDir)
	if _, statErr := os.Stat(configPath); statErr == nil {
		if err := k.Load(file.Provider(configPath), json.Parser()); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %v: %w", configPath, err, serrors.ErrConfig)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("read environment: %v: %w", err, serrors.ErrConfig)
	}

	if cmd != nil {
		if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
			return nil, serrors.Wrap(err, "read flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %v: %w", err, serrors.ErrConfig)
	}

	if cfg.DefaultDaysBack <= 0 {
		return nil, serrors.Config(fmt.Sprintf("default_days_back must be positive, got %d", cfg.DefaultDaysBack))
	}

	cfg.BaseDir = baseDir
	return &cfg, nil
}

func flagValue(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return strings.TrimSpace(flag.Value.String())
	}
	return ""
}
