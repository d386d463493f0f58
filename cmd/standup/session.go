package main

import (
	"fmt"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/session"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long:  `List and reset the persisted chat session transcripts.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store := session.NewStore(cfg.BaseDir)
		metas, err := store.ListRecent(limit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(metas) == 0 {
			fmt.Println("No sessions found.")
			fmt.Println("\nRun 'standup chat' to start one.")
			return nil
		}

		rows := make([][]string, 0, len(metas))
		for _, meta := range metas {
			rows = append(rows, []string{
				meta.Key,
				meta.CreatedAt.Format("2006-01-02 15:04"),
				meta.UpdatedAt.Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(renderTable([]string{"Session", "Created", "Last Active"}, rows))
		return nil
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Delete one session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := session.NewStore(cfg.BaseDir)
		if err := store.Delete(args[0]); err != nil {
			if serrors.IsCategory(err, serrors.ErrNotFound) {
				fmt.Printf("No session named %s.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to delete session: %w", err)
		}
		fmt.Printf("Deleted session %s.\n", args[0])
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all session transcripts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := session.NewStore(cfg.BaseDir)
		removed, err := store.ClearAll()
		if err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		fmt.Printf("Removed %d session(s).\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	sessionLsCmd.Flags().Int("limit", 20, "maximum sessions to list")
}
