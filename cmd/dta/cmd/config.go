/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration with a generated API key",
		Long: `Create a configuration file with default codec, server and catalog
settings and a freshly generated API key.

Examples:
  dta config init
  dta config init --config ./dtafile.yaml --data-dir ./data --print-key`,
		// the config file may not exist yet, so skip loading it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}
			if config.ConfigExists(configPath) && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", configPath)
			}

			cfg, err := config.BootstrapConfig(configPath, dataDir)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration created at %s\n", configPath)
			if printKey {
				cmd.Printf("API Key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}
	initCmd.Flags().String("data-dir", "", "Catalog data directory (default ./data)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")

	configCmd.AddCommand(initCmd)
	return configCmd
}
