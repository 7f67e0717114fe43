/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/config"
	"github.com/ssargent/dtafile/pkg/di"
	"github.com/ssargent/dtafile/pkg/dta"
)

var container *di.Container

// SetContainer injects the dependency container used by serve
func SetContainer(c *di.Container) {
	container = c
}

type settingsKey struct{}

// settings is resolved once per invocation from the config file and the
// global flags
type settings struct {
	cfg    *config.Config
	opts   []dta.Option
	logger *slog.Logger
	output string
}

func settingsFrom(cmd *cobra.Command) *settings {
	s, ok := cmd.Context().Value(settingsKey{}).(*settings)
	if !ok {
		return &settings{cfg: config.DefaultConfig(), logger: slog.Default(), output: "table"}
	}
	return s
}

// loadConfig reads --config, falls back to the default path and finally to
// built-in defaults
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	if def := config.GetDefaultConfigPath(); config.ConfigExists(def) {
		return config.LoadConfig(def)
	}
	return config.DefaultConfig(), nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dta",
		Short: "dtafile - read and write .dta statistical data files",
		Long: `dtafile reads .dta data files of generations 5, 6, 7, 7/SE and 8 and
writes generations 6, 7 and 8. It can inspect files, convert between
generations, export rows as CSV or JSON and serve an HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			charset, _ := cmd.Flags().GetString("charset")
			output, _ := cmd.Flags().GetString("output")
			logLevel, _ := cmd.Flags().GetString("log-level")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("charset") {
				cfg.Codec.Charset = charset
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unknown output format %q, use table or json", output)
			}

			opts, err := cfg.Codec.Options()
			if err != nil {
				return err
			}
			logger := cfg.Logging.NewLogger(cmd.ErrOrStderr())
			opts = append(opts, dta.WithLogger(logger))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, settingsKey{}, &settings{
				cfg:    cfg,
				opts:   opts,
				logger: logger,
				output: output,
			}))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("charset", "raw", "Text encoding of files: raw, latin1 or windows-1252")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table or json")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newInspectCmd(),
		newConvertCmd(),
		newExportCmd(),
		newLabelsCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// decodeFile opens and decodes one file
func decodeFile(path string, opts []dta.Option) (*dta.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := dta.Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return ds, nil
}
