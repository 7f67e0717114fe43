/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/dtafile/pkg/api"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the dtafile REST API. Uploaded files are kept in the catalog
under the configured data directory. Every route under /api/v1 requires the
X-API-Key header.

Examples:
  dta config init
  dta serve
  dta serve --port 9000 --api-key mysecretkey --data-dir ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settingsFrom(cmd)
			cfg := s.cfg

			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
			}
			if cmd.Flags().Changed("api-key") {
				cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.Catalog.DataDir, _ = cmd.Flags().GetString("data-dir")
			}
			if cfg.Server.APIKey == "" || cfg.Server.APIKey == "auto" {
				return errors.New("no API key configured, run 'dta config init' or pass --api-key")
			}

			if container == nil {
				return errors.New("dependency container not initialized")
			}

			version, err := cfg.Codec.Version()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Catalog.DataDir, 0750); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
			catalog, err := container.GetCatalogFactory().OpenCatalog(cfg.Catalog.DataDir, cfg.Catalog.Compress)
			if err != nil {
				return err
			}
			defer catalog.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("Starting dtafile server on %s:%d\n", cfg.Server.Bind, cfg.Server.Port)
			cmd.Printf("Data directory: %s\n", cfg.Catalog.DataDir)

			starter := container.GetServerFactory().CreateServerStarter()
			return starter.StartServer(ctx, catalog, api.ServerConfig{
				Port:          cfg.Server.Port,
				Bind:          cfg.Server.Bind,
				APIKey:        cfg.Server.APIKey,
				CacheSize:     cfg.Server.CacheSize,
				MaxUpload:     cfg.Server.MaxUpload,
				TargetVersion: version,
				CodecOptions:  s.opts,
				Logger:        s.logger,
			})
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().String("api-key", "", "API key for client authentication")
	serveCmd.Flags().StringP("data-dir", "d", "./data", "Catalog data directory")
	return serveCmd
}
