package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a standup summary from your GitHub activity",
	Long:  `Collects pull requests, issues, commits, and reviews via the gh CLI and writes a standup update in your configured style.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildAgent(ctx)
		if err != nil {
			return err
		}

		days, _ := cmd.Flags().GetInt("days")
		quickStyle, _ := cmd.Flags().GetString("style")
		save, _ := cmd.Flags().GetBool("save")

		summary, err := a.Generate(ctx, days, quickStyle)
		if err != nil {
			return err
		}

		fmt.Println(renderSummary(summary))

		if save {
			rec, err := a.SaveCurrent(ctx, "")
			if err != nil {
				return fmt.Errorf("failed to save summary: %w", err)
			}
			fmt.Printf("Saved to history for %s\n", rec.Date)
		} else {
			fmt.Println(hintStyle.Render("Run 'standup chat' to refine, save, or publish this summary."))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntP("days", "d", 0, "days of activity to look back (default from config)")
	generateCmd.Flags().StringP("style", "s", "", "one-off style hint, e.g. \"terse bullet points\"")
	generateCmd.Flags().Bool("save", false, "save the summary to history")
}
