package main

import (
	"encoding/json"
	"fmt"
	"os"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/history"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved standup summaries",
	Long:  `List, inspect, search, and clear standup summaries saved to history.`,
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List saved summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store := history.NewStore(cfg.BaseDir)
		records, err := store.Recent(limit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No summaries saved yet.")
			fmt.Println("\nRun 'standup generate --save' to save your first one.")
			return nil
		}

		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			name := rec.Name
			if name == "" {
				name = "-"
			}
			rows = append(rows, []string{rec.Date, name, truncate(rec.Summary, 60)})
		}
		fmt.Println(renderTable([]string{"Date", "Name", "Summary"}, rows))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <date>",
	Short: "Show the summary saved for a date (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store := history.NewStore(cfg.BaseDir)
		rec, ok, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if !ok {
			return serrors.NotFound("no summary saved for " + args[0])
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rec)
	},
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search saved summaries semantically",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := buildAgent(ctx)
		if err != nil {
			return err
		}

		store := history.NewStore(cfg.BaseDir)
		query := ""
		for i, arg := range args {
			if i > 0 {
				query += " "
			}
			query += arg
		}

		results, err := store.Search(ctx, a.Embedder(), query, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No matching summaries.")
			return nil
		}

		rows := make([][]string, 0, len(results))
		for _, res := range results {
			rows = append(rows, []string{res.Date, fmt.Sprintf("%.2f", res.Score), truncate(res.Summary, 60)})
		}
		fmt.Println(renderTable([]string{"Date", "Score", "Summary"}, rows))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear [date]",
	Short: "Delete the summaries saved for a date, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) > 0 {
			date = args[0]
		}

		store := history.NewStore(cfg.BaseDir)
		removed, err := store.Clear(date)
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		if date == "" {
			fmt.Printf("Removed %d record(s).\n", removed)
		} else {
			fmt.Printf("Removed %d record(s) for %s.\n", removed, date)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete unnamed summaries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := history.NewStore(cfg.BaseDir)
		removed, err := store.Prune(cfg.HistoryDaysToKeep)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Printf("Removed %d record(s) older than %d days.\n", removed, cfg.HistoryDaysToKeep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyLsCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyLsCmd.Flags().Int("limit", 14, "maximum records to list")
	historyShowCmd.Flags().Bool("json", false, "output as JSON instead of YAML")
	historySearchCmd.Flags().Int("limit", 5, "maximum results")
}
