package main

import (
	"fmt"
	"strings"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/tasks"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Track the work log behind your standups",
	Long:  `Log what you are working on as it happens. Logged tasks and their notes feed the next generated standup alongside your GitHub activity.`,
}

var taskLogCmd = &cobra.Command{
	Use:   "log <title>",
	Short: "Log a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")

		store := tasks.NewStore(cfg.BaseDir)
		task, err := store.Log(strings.Join(args, " "), tags)
		if err != nil {
			return fmt.Errorf("failed to log task: %w", err)
		}

		fmt.Printf("Logged %q (%s)\n", task.Title, shortID(task.ID))
		return nil
	},
}

var taskNoteCmd = &cobra.Command{
	Use:   "note <id> <note>",
	Short: "Add a progress note to a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := tasks.NewStore(cfg.BaseDir)
		task, err := store.AddNote(args[0], strings.Join(args[1:], " "))
		if err != nil {
			if serrors.IsCategory(err, serrors.ErrNotFound) {
				fmt.Printf("No task matches %q. Run 'standup task ls' to see ids.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to add note: %w", err)
		}

		status, _ := cmd.Flags().GetString("status")
		if status != "" {
			if task, err = store.SetStatus(task.ID, tasks.Status(status)); err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}
		}

		fmt.Printf("Updated %q (%s)\n", task.Title, task.Status)
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id> [note]",
	Short: "Mark a task completed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := tasks.NewStore(cfg.BaseDir)
		task, err := store.Complete(args[0], strings.Join(args[1:], " "))
		if err != nil {
			if serrors.IsCategory(err, serrors.ErrNotFound) {
				fmt.Printf("No task matches %q. Run 'standup task ls' to see ids.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to complete task: %w", err)
		}

		fmt.Printf("Completed %q\n", task.Title)
		return nil
	},
}

var taskLinkCmd = &cobra.Command{
	Use:   "link <id> <url>",
	Short: "Attach a PR or issue to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := tasks.NewStore(cfg.BaseDir)

		link := store.LinkIssue
		if strings.Contains(args[1], "/pull/") {
			link = store.LinkPR
		}

		task, err := link(args[0], args[1])
		if err != nil {
			if serrors.IsCategory(err, serrors.ErrNotFound) {
				fmt.Printf("No task matches %q. Run 'standup task ls' to see ids.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to link task: %w", err)
		}

		fmt.Printf("Linked %s to %q\n", args[1], task.Title)
		return nil
	},
}

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		status := tasks.StatusInProgress
		if all {
			status = ""
		}

		store := tasks.NewStore(cfg.BaseDir)
		list, err := store.List(status)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No tasks logged.")
			fmt.Println("\nRun 'standup task log <title>' when you start on something.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, task := range list {
			note := ""
			if n := len(task.Updates); n > 0 {
				note = task.Updates[n-1].Note
			}
			rows = append(rows, []string{
				shortID(task.ID),
				string(task.Status),
				truncate(task.Title, 40),
				truncate(note, 40),
			})
		}
		fmt.Println(renderTable([]string{"ID", "Status", "Title", "Last Note"}, rows))
		return nil
	},
}

var taskClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole work log",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := tasks.NewStore(cfg.BaseDir)
		removed, err := store.ClearAll()
		if err != nil {
			return fmt.Errorf("failed to clear tasks: %w", err)
		}
		fmt.Printf("Removed %d task(s).\n", removed)
		return nil
	},
}

// shortID keeps task ids typeable; the store resolves unambiguous prefixes.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskLogCmd)
	taskCmd.AddCommand(taskNoteCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskLinkCmd)
	taskCmd.AddCommand(taskLsCmd)
	taskCmd.AddCommand(taskClearCmd)

	taskLogCmd.Flags().StringSlice("tag", nil, "tag the task, repeatable")
	taskNoteCmd.Flags().String("status", "", "also move the task to this status (in_progress, completed, abandoned)")
	taskLsCmd.Flags().Bool("all", false, "include completed and abandoned tasks")
}
