package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/history"
	"github.com/standup-agent/standup/internal/scheduler"
	"github.com/standup-agent/standup/internal/store"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the standup reminder in the background",
	Long:  `Runs a long-lived process that prepares a draft standup on the configured cron schedule and prunes old history. Drafts land in history; publishing still requires an interactive confirm.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.EnsureDir(cfg.BaseDir); err != nil {
			return fmt.Errorf("failed to prepare config dir: %w", err)
		}

		// One daemon per config dir.
		daemonLock := flock.New(filepath.Join(cfg.BaseDir, "daemon.lock"))
		locked, err := daemonLock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to acquire daemon lock: %w", err)
		}
		if !locked {
			return fmt.Errorf("another standup daemon is already running for %s", cfg.BaseDir)
		}
		defer daemonLock.Unlock()

		sched := scheduler.New()
		if err := sched.Add(cfg.ReminderSchedule, runReminder); err != nil {
			return err
		}

		handler := NewSignalHandler(cmd.Context())
		handler.Start()
		defer handler.Stop()

		slog.Info("Daemon started", "schedule", cfg.ReminderSchedule, "config_dir", cfg.BaseDir)
		return sched.Start(handler.Context())
	},
}

// runReminder prepares a draft for today and saves it to history. Nothing is
// posted to Slack from here.
func runReminder(ctx context.Context) {
	a, err := buildAgent(ctx)
	if err != nil {
		slog.Error("Reminder skipped, could not build workflow", "error", err)
		return
	}

	summary, err := a.Generate(ctx, cfg.DefaultDaysBack, "")
	if err != nil {
		if serrors.IsCategory(err, serrors.ErrNotFound) {
			slog.Info("Reminder found no activity, nothing drafted")
		} else {
			slog.Error("Reminder generation failed", "error", err)
		}
		return
	}

	rec, err := a.SaveCurrent(ctx, "")
	if err != nil {
		slog.Error("Reminder could not save draft", "error", err)
		return
	}
	slog.Info("Draft standup ready", "date", rec.Date, "length", len(summary))

	if pruned, err := history.NewStore(cfg.BaseDir).Prune(cfg.HistoryDaysToKeep); err != nil {
		slog.Warn("History prune failed", "error", err)
	} else if pruned > 0 {
		slog.Info("Pruned old history", "removed", pruned)
	}
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
