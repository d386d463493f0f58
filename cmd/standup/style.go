package main

import (
	"fmt"

	"github.com/standup-agent/standup/internal/config"
	"github.com/standup-agent/standup/internal/style"

	"github.com/spf13/cobra"
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Manage the writing style for summaries",
	Long:  `Manage the style.md and examples.md files that shape how summaries are written. Files in the current directory take precedence over the global config directory.`,
}

var styleInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter style.md",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, created, err := style.InitStyle(cfg.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to init style file: %w", err)
		}
		if created {
			fmt.Printf("Created %s\n", path)
			fmt.Println("Edit it to describe how your standups should read.")
		} else {
			fmt.Printf("Style file already exists at %s\n", path)
		}
		return nil
	},
}

var styleInitExamplesCmd = &cobra.Command{
	Use:   "init-examples",
	Short: "Create a starter examples.md",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, created, err := style.InitExamples(cfg.BaseDir)
		if err != nil {
			return fmt.Errorf("failed to init examples file: %w", err)
		}
		if created {
			fmt.Printf("Created %s\n", path)
			fmt.Println("Replace the samples with standups you have actually written.")
		} else {
			fmt.Printf("Examples file already exists at %s\n", path)
		}
		return nil
	},
}

var styleShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved style bundle",
	Long:  `Print the style instructions exactly as the summarizer will see them, after local-over-global resolution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle := style.Resolve(cfg.BaseDir, cfg.StyleInstructions)
		if bundle == "" {
			fmt.Println("No style configured. Run 'standup style init' to create one.")
			return nil
		}
		fmt.Println(bundle)
		return nil
	},
}

var styleSetCmd = &cobra.Command{
	Use:   "set <instructions>",
	Short: "Persist a one-line style instruction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		joined := ""
		for i, arg := range args {
			if i > 0 {
				joined += " "
			}
			joined += arg
		}
		if err := config.SetKey(cfg.BaseDir, "style_instructions", joined); err != nil {
			return err
		}
		fmt.Println("Style instructions saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(styleCmd)
	styleCmd.AddCommand(styleInitCmd)
	styleCmd.AddCommand(styleInitExamplesCmd)
	styleCmd.AddCommand(styleShowCmd)
	styleCmd.AddCommand(styleSetCmd)
}
