package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/standup-agent/standup/internal/config"
	"github.com/standup-agent/standup/internal/store"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and edit the persisted configuration. Environment variables with the STANDUP_ prefix override anything set here.`,
}

var configViewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"show"},
	Short:   "Dump fully resolved configuration",
	Long:    `Display current configuration with all defaults applied and environment variables resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist one configuration value",
	Long:  `Write a key to config.json, preserving everything else in the file. Run 'standup config set' with no arguments to list settable keys.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Println("Settable keys:")
			for _, key := range config.SettableKeys() {
				fmt.Printf("  %s\n", key)
			}
			return nil
		}
		if len(args) != 2 {
			return fmt.Errorf("expected <key> <value>, got %d argument(s)", len(args))
		}

		if err := config.SetKey(cfg.BaseDir, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set %s in %s\n", args[0], store.ConfigPath(cfg.BaseDir))
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(cfg.BaseDir, args[0]); err != nil {
			return err
		}
		fmt.Printf("Unset %s, the default applies again.\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(store.ConfigPath(cfg.BaseDir))
		return nil
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List STANDUP_ environment overrides currently set",
	RunE: func(cmd *cobra.Command, args []string) error {
		found := false
		for _, kv := range os.Environ() {
			if strings.HasPrefix(kv, "STANDUP_") {
				fmt.Println(kv)
				found = true
			}
		}
		if !found {
			fmt.Println("No STANDUP_ environment overrides set.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEnvCmd)
}
