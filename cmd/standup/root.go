package main

import (
	"fmt"
	"os"

	"github.com/standup-agent/standup/internal/config"
	"github.com/standup-agent/standup/internal/logger"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "standup",
	Short: "GitHub standup agent",
	Long:  `Standup collects your GitHub activity, writes a standup update in your style, and publishes it to Slack after you confirm.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "config directory (default is $XDG_CONFIG_HOME/standup-agent)")
	rootCmd.PersistentFlags().String("log_level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
}
